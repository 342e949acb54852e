package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"campushub/internal/domain/models"
	"campushub/internal/http/middleware"
	"campushub/internal/services"
	"campushub/internal/storage"

	"github.com/gin-gonic/gin"
)

func housingService(c *gin.Context) services.HousingService {
	return services.HousingService{RequestID: middleware.GetRequestID(c)}
}

func ListProperties(c *gin.Context) {
	out, err := housingService(c).ListProperties(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, reviews, err := housingService(c).GetProperty(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p, "reviews": reviews})
}

// CreateProperty accepts multipart form fields plus up to 10 "images" files.
func CreateProperty(up storage.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "expected multipart form", err)
			return
		}
		price, ok := formFloat(c, "price")
		if !ok {
			return
		}
		distance, ok := formFloat(c, "distance")
		if !ok {
			return
		}
		files := form.File["images"]
		if len(files) > services.MaxServiceImages {
			RespondError(c, http.StatusBadRequest, "too many images", nil)
			return
		}
		in := models.PropertyInput{
			Title:       strings.TrimSpace(c.PostForm("title")),
			Description: c.PostForm("description"),
			Price:       price,
			Location:    c.PostForm("location"),
			Distance:    distance,
			Amenities:   c.PostForm("amenities"),
		}
		if in.Title == "" {
			RespondError(c, http.StatusBadRequest, "title is required", nil)
			return
		}
		names, err := up.SaveImages("images", files)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		in.Images = names
		p, err := housingService(c).CreateProperty(c.Request.Context(), in)
		if err != nil {
			up.Remove(names...)
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func DeleteProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := housingService(c).DeleteProperty(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

func CreateBooking(c *gin.Context) {
	var req models.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := housingService(c).CreateBooking(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func ListBookings(c *gin.Context) {
	out, err := housingService(c).ListBookings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func ConfirmBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := housingService(c).ConfirmBooking(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "confirmed"})
}

func CreateReview(c *gin.Context) {
	var req models.ReviewInput
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := housingService(c).CreateReview(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func ExportBookings(c *gin.Context) {
	rid := middleware.GetRequestID(c)
	reports := services.ReportsService{
		Housing:   services.HousingService{RequestID: rid},
		RequestID: rid,
	}
	var buf bytes.Buffer
	filename, err := reports.ExportHousingBookings(c.Request.Context(), &buf)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, "text/csv; charset=utf-8", filename, buf.Bytes())
}

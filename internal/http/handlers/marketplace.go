package handlers

import (
	"net/http"
	"strings"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/http/middleware"
	"campushub/internal/services"
	"campushub/internal/storage"

	"github.com/gin-gonic/gin"
)

func marketplaceService(c *gin.Context) services.MarketplaceService {
	return services.MarketplaceService{RequestID: middleware.GetRequestID(c)}
}

func ListBusinesses(c *gin.Context) {
	out, err := marketplaceService(c).ListApprovedBusinesses(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListAllBusinesses includes pending businesses for the admin review queue.
func ListAllBusinesses(c *gin.Context) {
	out, err := marketplaceService(c).ListAllBusinesses(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetBusiness(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, svcs, err := marketplaceService(c).GetBusiness(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": b, "services": svcs})
}

func CreateBusiness(up storage.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		logo, err := c.FormFile("logo")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "logo is required", nil)
			return
		}
		in := models.BusinessInput{
			Name:         strings.TrimSpace(c.PostForm("name")),
			Description:  c.PostForm("description"),
			Category:     c.PostForm("category"),
			ContactEmail: strings.TrimSpace(c.PostForm("contact_email")),
			ContactPhone: strings.TrimSpace(c.PostForm("contact_phone")),
			Location:     c.PostForm("location"),
			Password:     c.PostForm("password"),
		}
		if in.Name == "" {
			RespondError(c, http.StatusBadRequest, "name is required", nil)
			return
		}
		name, err := up.SaveImage("logo", logo)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		in.Logo = name
		b, err := marketplaceService(c).CreateBusiness(c.Request.Context(), in)
		if err != nil {
			up.Remove(name)
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"business": b,
			"message":  "business registered, awaiting approval",
		})
	}
}

func ApproveBusiness(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	already, err := marketplaceService(c).ApproveBusiness(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	msg := "business approved"
	if already {
		msg = "business already approved"
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "approved": true, "message": msg})
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

func SetBusinessPassword(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := marketplaceService(c).SetBusinessPassword(c.Request.Context(), id, req.Password); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func DeleteBusiness(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := marketplaceService(c).DeleteBusiness(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "business and its services deleted"})
}

func ListServices(c *gin.Context) {
	out, err := marketplaceService(c).ListServices(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	svc, err := marketplaceService(c).GetService(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService takes multipart fields and 1 to 10 "images" files.
func CreateService(up storage.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "expected multipart form", err)
			return
		}
		businessID, err := parseFormID(c.PostForm("business_id"))
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid business_id", nil)
			return
		}
		price, ok := formFloat(c, "price")
		if !ok {
			return
		}
		files := form.File["images"]
		switch {
		case len(files) == 0:
			RespondError(c, http.StatusBadRequest, "at least one image is required", nil)
			return
		case len(files) > services.MaxServiceImages:
			RespondError(c, http.StatusBadRequest, "too many images", nil)
			return
		}
		in := models.ServiceInput{
			BusinessID:  businessID,
			Name:        strings.TrimSpace(c.PostForm("name")),
			Description: c.PostForm("description"),
			Price:       price,
			Duration:    c.PostForm("duration"),
		}
		if in.Name == "" {
			RespondError(c, http.StatusBadRequest, "name is required", nil)
			return
		}
		names, err := up.SaveImages("images", files)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		in.Images = names
		svc, err := marketplaceService(c).CreateService(c.Request.Context(), in)
		if err != nil {
			up.Remove(names...)
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, svc)
	}
}

func CreateServiceBooking(c *gin.Context) {
	var req models.ServiceBookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	sb, link, err := marketplaceService(c).BookService(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":            sb.ID,
		"status":        sb.Status,
		"whatsapp_link": link,
	})
}

func BusinessOrders(c *gin.Context) {
	id, ok := ownBusiness(c, "id")
	if !ok {
		return
	}
	out, err := marketplaceService(c).Orders(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func MarkOrderDelivered(c *gin.Context) {
	bookingID, ok := parseID(c, "id")
	if !ok {
		return
	}
	businessID, ok := middleware.BusinessID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	if err := marketplaceService(c).MarkDelivered(c.Request.Context(), businessID, bookingID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": bookingID, "status": domain.ServiceBookingDelivered})
}

func BusinessNotifications(c *gin.Context) {
	id, ok := ownBusiness(c, "id")
	if !ok {
		return
	}
	out, err := marketplaceService(c).Notifications(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

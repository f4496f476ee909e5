package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/geo"
	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/httpresp"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
)

const geocodeTimeout = 5 * time.Second

var (
	minLat = decimal.NewFromInt(-90)
	maxLat = decimal.NewFromInt(90)
	minLon = decimal.NewFromInt(-180)
	maxLon = decimal.NewFromInt(180)
)

// ======================================================
// HANDLER
// ======================================================

type AddressHandler struct {
	db       *gorm.DB
	geocoder geo.Geocoder
	audit    audit.Recorder
}

func NewAddressHandler(db *gorm.DB, geocoder geo.Geocoder, rec audit.Recorder) *AddressHandler {
	return &AddressHandler{db: db, geocoder: geocoder, audit: rec}
}

// --------- Requests ---------

type AddressRequest struct {
	RecipientName string           `json:"recipient_name" binding:"required,max=255"`
	Phone         string           `json:"phone" binding:"required,max=20"`
	Province      string           `json:"province" binding:"required,max=100"`
	District      string           `json:"district" binding:"required,max=100"`
	Ward          string           `json:"ward" binding:"omitempty,max=100"`
	StreetAddress string           `json:"street_address" binding:"required,max=255"`
	IsDefault     *bool            `json:"is_default"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`
}

// --------- Handlers ---------

func (h *AddressHandler) List(c *gin.Context) {
	var addrs []models.ShippingAddress
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", middleware.CurrentUserID(c)).
		Order("is_default DESC").
		Order("address_id ASC").
		Find(&addrs).Error; err != nil {
		serverError(c, "address_list_failed", "Failed to load addresses.", err)
		return
	}
	httpresp.List(c, addrs)
}

// Create makes the first address of a user its default.
func (h *AddressHandler) Create(c *gin.Context) {
	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validCoordinates(c, req) {
		return
	}

	userID := middleware.CurrentUserID(c)
	a := models.ShippingAddress{UserID: userID}
	applyAddress(&a, req)
	h.geocode(c.Request.Context(), &a)

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ShippingAddress{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Omit("User", "Orders").Create(&a).Error
	})
	if err != nil {
		serverError(c, "address_create_failed", "Failed to save the address.", err)
		return
	}

	h.record(c, "address.created", a.ID)
	httpresp.Created(c, gin.H{"data": a, "message": "Address saved successfully."})
}

func (h *AddressHandler) Update(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validCoordinates(c, req) {
		return
	}

	wasDefault := a.IsDefault
	query := a.GeocodeQuery()
	applyAddress(a, req)
	// a moved address needs new coordinates unless the client sent them
	if req.Latitude == nil && req.Longitude == nil && a.GeocodeQuery() != query {
		a.Latitude = decimal.NullDecimal{}
		a.Longitude = decimal.NullDecimal{}
	}
	// the only way to drop the default is to pick another one
	if wasDefault {
		a.IsDefault = true
	}
	h.geocode(c.Request.Context(), a)

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault && !wasDefault {
			if err := clearDefault(tx, a.UserID); err != nil {
				return err
			}
		}
		return tx.Omit("User", "Orders").Save(a).Error
	})
	if err != nil {
		serverError(c, "address_update_failed", "Failed to update the address.", err)
		return
	}

	h.record(c, "address.updated", a.ID)
	httpresp.OK(c, gin.H{"data": a, "message": "Address updated successfully."})
}

func (h *AddressHandler) SetDefault(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, a.UserID); err != nil {
			return err
		}
		return tx.Model(a).Update("is_default", true).Error
	})
	if err != nil {
		serverError(c, "address_update_failed", "Failed to update the address.", err)
		return
	}

	a.IsDefault = true
	h.record(c, "address.default_set", a.ID)
	httpresp.OK(c, gin.H{"data": a, "message": "Default address updated."})
}

// Delete refuses addresses that orders point at and hands the default flag
// to the oldest remaining address.
func (h *AddressHandler) Delete(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.Order{}).Where("shipping_address_id = ?", a.ID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return errAddressInUse
		}

		if err := tx.Delete(a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}

		var next models.ShippingAddress
		err := tx.Where("user_id = ?", a.UserID).Order("address_id ASC").First(&next).Error
		if httperr.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
	if errors.Is(err, errAddressInUse) {
		httperr.Conflict(c, "address_in_use", "This address is used by existing orders and cannot be deleted.")
		return
	}
	if err != nil {
		serverError(c, "address_delete_failed", "Failed to delete the address.", err)
		return
	}

	h.record(c, "address.deleted", a.ID)
	httpresp.Message(c, "Address deleted successfully.")
}

// --------- helpers ---------

var errAddressInUse = errors.New("address in use")

func (h *AddressHandler) find(c *gin.Context) (*models.ShippingAddress, bool) {
	id, ok := idParam(c, "id", "address_not_found")
	if !ok {
		return nil, false
	}

	var a models.ShippingAddress
	if err := h.db.WithContext(c.Request.Context()).
		Where("address_id = ? AND user_id = ?", id, middleware.CurrentUserID(c)).
		First(&a).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "address_not_found", "Address not found.")
			return nil, false
		}
		serverError(c, "address_load_failed", "Failed to load the address.", err)
		return nil, false
	}
	return &a, true
}

// geocode fills missing coordinates. Failures only get logged.
func (h *AddressHandler) geocode(ctx context.Context, a *models.ShippingAddress) {
	if a.HasCoordinates() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	p, err := h.geocoder.Geocode(ctx, a.GeocodeQuery())
	if err != nil {
		if !errors.Is(err, geo.ErrDisabled) {
			logging.FromContext(ctx).Warn("geocoding failed", "query", a.GeocodeQuery(), "error", err)
		}
		return
	}
	a.Latitude = decimal.NewNullDecimal(p.Lat)
	a.Longitude = decimal.NewNullDecimal(p.Lon)
}

func (h *AddressHandler) record(c *gin.Context, action string, id uint) {
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "shipping_address",
		EntityID: &id,
	})
}

func clearDefault(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.ShippingAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func applyAddress(a *models.ShippingAddress, req AddressRequest) {
	a.RecipientName = strings.TrimSpace(req.RecipientName)
	a.Phone = strings.TrimSpace(req.Phone)
	a.Province = strings.TrimSpace(req.Province)
	a.District = strings.TrimSpace(req.District)
	a.Ward = strings.TrimSpace(req.Ward)
	a.StreetAddress = strings.TrimSpace(req.StreetAddress)
	if req.IsDefault != nil {
		a.IsDefault = *req.IsDefault
	}
	if req.Latitude != nil && req.Longitude != nil {
		a.Latitude = decimal.NewNullDecimal(req.Latitude.Round(8))
		a.Longitude = decimal.NewNullDecimal(req.Longitude.Round(8))
	}
}

func validCoordinates(c *gin.Context, req AddressRequest) bool {
	fields := map[string][]string{}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		fields["latitude"] = []string{"Latitude and longitude must be sent together."}
	}
	if req.Latitude != nil && (req.Latitude.LessThan(minLat) || req.Latitude.GreaterThan(maxLat)) {
		fields["latitude"] = append(fields["latitude"], "The latitude field must be between -90 and 90.")
	}
	if req.Longitude != nil && (req.Longitude.LessThan(minLon) || req.Longitude.GreaterThan(maxLon)) {
		fields["longitude"] = append(fields["longitude"], "The longitude field must be between -180 and 180.")
	}
	if len(fields) > 0 {
		httperr.Invalid(c, fields)
		return false
	}
	return true
}

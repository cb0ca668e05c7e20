package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/models"
)

func newCertificateHandler(db *gorm.DB) *CertificateHandler {
	return &CertificateHandler{DB: db, Validate: newValidator()}
}

func TestCertificateCreate(t *testing.T) {
	db := newTestDB(t)
	h := newCertificateHandler(db)
	owner := seedOwner(t, db)

	c, rec := newJSONContext(t, http.MethodPost, "/certificates", map[string]any{
		"owner":             999,
		"name":              "ГОСТ",
		"certificateNumber": "123-456",
	})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Владелец не найден", decodeBody(t, rec)["message"])

	c, rec = newJSONContext(t, http.MethodPost, "/certificates", map[string]any{
		"owner":             owner.ID,
		"name":              "ГОСТ",
		"certificateNumber": "123-456",
	})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Сертификат успешно создан", decodeBody(t, rec)["message"])

	var cert models.Certificate
	require.NoError(t, db.Where("certificate_number = ?", "123-456").First(&cert).Error)

	var freshOwner models.Owner
	require.NoError(t, db.First(&freshOwner, owner.ID).Error)
	require.Contains(t, freshOwner.Certificates, cert.ID)
}

func TestCertificateUpdate(t *testing.T) {
	db := newTestDB(t)
	h := newCertificateHandler(db)
	owner := seedOwner(t, db)

	cert := models.Certificate{Name: "ГОСТ", CertificateNumber: "123", OwnerID: owner.ID}
	require.NoError(t, db.Create(&cert).Error)

	c, rec := newJSONContext(t, http.MethodPut, "/certificates/1", map[string]any{
		"certificateNumber": "456",
	})
	c.SetParamNames("certificateId")
	c.SetParamValues(fmt.Sprint(cert.ID))
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh models.Certificate
	require.NoError(t, db.First(&fresh, cert.ID).Error)
	require.Equal(t, "456", fresh.CertificateNumber)
	require.Equal(t, "ГОСТ", fresh.Name)

	c, rec = newJSONContext(t, http.MethodPut, "/certificates/999", map[string]any{"name": "x"})
	c.SetParamNames("certificateId")
	c.SetParamValues("999")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Сертификат не найден", decodeBody(t, rec)["message"])
}

func TestCertificateDelete(t *testing.T) {
	db := newTestDB(t)
	h := newCertificateHandler(db)
	owner := seedOwner(t, db)

	cert := models.Certificate{Name: "ГОСТ", CertificateNumber: "123", OwnerID: owner.ID}
	require.NoError(t, db.Create(&cert).Error)

	c, rec := newJSONContext(t, http.MethodDelete, "/certificates/1", nil)
	c.SetParamNames("certificateId")
	c.SetParamValues(fmt.Sprint(cert.ID))
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Сертификат удалён", decodeBody(t, rec)["message"])

	c, rec = newJSONContext(t, http.MethodDelete, "/certificates/1", nil)
	c.SetParamNames("certificateId")
	c.SetParamValues(fmt.Sprint(cert.ID))
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCertificateGet(t *testing.T) {
	db := newTestDB(t)
	h := newCertificateHandler(db)
	owner := seedOwner(t, db)

	cert := models.Certificate{Name: "ГОСТ", CertificateNumber: "123", OwnerID: owner.ID}
	require.NoError(t, db.Create(&cert).Error)

	c, rec := newJSONContext(t, http.MethodGet, "/certificates", nil)
	require.NoError(t, h.GetAll(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(t, http.MethodGet, "/certificates/999", nil)
	c.SetParamNames("certificateId")
	c.SetParamValues("999")
	require.NoError(t, h.GetByID(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

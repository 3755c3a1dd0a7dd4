package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tour_ops/internal/services"
)

const dateLayout = "2006-01-02"

// respondError maps a service error kind onto an HTTP status.
func respondError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	entry := logrus.WithError(err).WithField("path", c.FullPath())
	if status == http.StatusInternalServerError {
		entry.Error(op + ": request failed")
	} else {
		entry.Warn(op + ": request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bind decodes the JSON body and writes a 400 on failure.
func bind(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logrus.WithError(err).Warn(op + ": invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return false
	}
	return true
}

// parseDate reads a YYYY-MM-DD date; nil or empty input yields nil.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, &services.ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return &t, nil
}

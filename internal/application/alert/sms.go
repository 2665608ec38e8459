package alert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alerta-api/internal/domain"
)

// smsFieldCount is the positional schema of a decoded SMS payload:
// userId, alertTypeCode, timestampMs, latitude, longitude, battery, accuracy.
const smsFieldCount = 7

// SMSPayload is the parsed form of an inbound alert SMS.
type SMSPayload struct {
	UserID        string
	AlertTypeCode string
	Timestamp     int64 // unix millis
	Latitude      float64
	Longitude     float64
	Battery       float64
	Accuracy      float64
}

// DecodeSMS strips the keyword prefix, deciphers the payload and parses the
// positional fields. Any failure rejects the message; no alert is created.
func (s *service) DecodeSMS(raw string) (*SMSPayload, error) {
	if !strings.HasPrefix(raw, s.smsKeyword) {
		return nil, fmt.Errorf("sms missing keyword prefix: %w", domain.ErrBadRequest)
	}
	plain, err := s.codec.Decode(strings.TrimPrefix(raw, s.smsKeyword), s.smsSecret)
	if err != nil {
		return nil, fmt.Errorf("sms decode: %v: %w", err, domain.ErrBadRequest)
	}
	fields := strings.Split(plain, ",")
	if len(fields) != smsFieldCount {
		return nil, fmt.Errorf("sms expects %d fields, got %d: %w", smsFieldCount, len(fields), domain.ErrBadRequest)
	}

	p := &SMSPayload{UserID: fields[0], AlertTypeCode: fields[1]}
	nums := make([]float64, 0, smsFieldCount-2)
	for _, f := range fields[2:] {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("sms numeric field %q: %w", f, domain.ErrBadRequest)
		}
		nums = append(nums, n)
	}
	p.Timestamp = int64(nums[0])
	p.Latitude = nums[1]
	p.Longitude = nums[2]
	p.Battery = nums[3]
	p.Accuracy = nums[4]
	return p, nil
}

// IngestSMS decodes an inbound SMS and runs the creation pipeline on behalf
// of the resolved reporter. An unknown reporter rejects the message.
func (s *service) IngestSMS(ctx context.Context, raw string) (*domain.CreateAlertResult, error) {
	payload, err := s.DecodeSMS(raw)
	if err != nil {
		return nil, err
	}
	reporter, err := s.users.Get(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("sms reporter %s: %w", payload.UserID, domain.ErrUnauthorized)
	}
	alertType, err := s.types.GetByCode(ctx, payload.AlertTypeCode)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertTypeNotFound, domain.ErrUnprocessable)
	}

	battery, accuracy := payload.Battery, payload.Accuracy
	return s.Create(ctx, domain.CreateAlertRequest{
		CustomerID:  reporter.CustomerID,
		UserID:      reporter.UserID,
		AlertTypeID: alertType.AlertTypeID,
		Geolocation: domain.Geolocation{
			Latitude:  payload.Latitude,
			Longitude: payload.Longitude,
			Timestamp: payload.Timestamp,
			Battery:   &battery,
			Accuracy:  &accuracy,
		},
	})
}

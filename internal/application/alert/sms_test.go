package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/pkg/cipher"
)

func encodeSMS(t *testing.T, plaintext string) string {
	t.Helper()
	encoded, err := cipher.Encode(testSMSPattern, plaintext, testSMSSecret)
	require.NoError(t, err)
	return testSMSKeyword + encoded
}

func TestDecodeSMS_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	raw := encodeSMS(t, "u1,fire,1650000000000,-34.6,-58.4,0.8,10")

	payload, err := svc.DecodeSMS(raw)

	require.NoError(t, err)
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "fire", payload.AlertTypeCode)
	assert.Equal(t, int64(1650000000000), payload.Timestamp)
	assert.Equal(t, -34.6, payload.Latitude)
	assert.Equal(t, -58.4, payload.Longitude)
	assert.Equal(t, 0.8, payload.Battery)
	assert.Equal(t, float64(10), payload.Accuracy)
}

func TestDecodeSMS_MissingKeyword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DecodeSMS("xyz-garbage")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDecodeSMS_WrongFieldCount(t *testing.T) {
	svc, _ := newTestService(t)
	raw := encodeSMS(t, "u1,fire,1650000000000")

	_, err := svc.DecodeSMS(raw)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDecodeSMS_NonNumericField(t *testing.T) {
	svc, _ := newTestService(t)
	raw := encodeSMS(t, "u1,fire,abc,-34.6,-58.4,0.8,10")

	_, err := svc.DecodeSMS(raw)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestIngestSMS_UnknownReporter(t *testing.T) {
	svc, d := newTestService(t)
	d.users.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	raw := encodeSMS(t, "u1,fire,1650000000000,-34.6,-58.4,0.8,10")

	_, err := svc.IngestSMS(context.Background(), raw)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestIngestSMS_CreatesAlert(t *testing.T) {
	svc, d := newTestService(t)
	expectHappyPath(d, businessCustomer(), fireType())
	d.types.On("GetByCode", mock.Anything, "fire").Return(fireType(), nil)
	raw := encodeSMS(t, "u1,fire,1650000000000,-34.6,-58.4,0.8,10")

	res, err := svc.IngestSMS(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "t-fire", res.Alert.AlertTypeID)
	assert.Equal(t, "biz-1", res.Alert.CustomerID)
	assert.Equal(t, -34.6, res.Alert.Geolocation.Latitude)
	assert.Equal(t, int64(1650000000000), res.Alert.Geolocation.Timestamp)
	require.NotNil(t, res.Alert.Geolocation.Battery)
	assert.Equal(t, 0.8, *res.Alert.Geolocation.Battery)
}

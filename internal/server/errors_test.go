package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/delivery"
	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantType string
	}{
		{err: counterdomain.ErrInvalidDateRange, wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{err: fmt.Errorf("parse: %w", report.ErrInvalidDate), wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{err: royaltydomain.ErrInvalidPress, wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{err: counterdomain.ErrUnknownReport, wantCode: http.StatusNotFound, wantType: "not_found"},
		{err: delivery.ErrDeliveryFailed, wantCode: http.StatusBadGateway, wantType: "delivery_failed"},
		{err: royaltydomain.ErrDeliveryUnavailable, wantCode: http.StatusServiceUnavailable, wantType: "service_unavailable"},
		{err: context.DeadlineExceeded, wantCode: http.StatusGatewayTimeout, wantType: "timeout"},
		{err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantType: "internal_error"},
	}
	for _, tc := range cases {
		code, payload := mapError(tc.err)
		assert.Equal(t, tc.wantCode, code, tc.err.Error())
		assert.Equal(t, tc.wantType, payload.Type, tc.err.Error())
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(counterdomain.ErrInvalidDateRange)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_date_range", code)

	typ, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "Internal Server Error", code)
}

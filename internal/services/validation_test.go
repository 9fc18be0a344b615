package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/models"
)

func validationCheckout() models.CheckoutRequest {
	return models.CheckoutRequest{
		Amount:  decimal.RequireFromString("19.99"),
		Plan:    "Pro Package",
		Credits: 120,
		BuyerID: "user_2abc",
	}
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()
	zero := 0

	cases := []struct {
		name   string
		mutate func(*models.CheckoutRequest)
		fields map[string]string
	}{
		{name: "complete request", mutate: func(*models.CheckoutRequest) {}},
		{
			name:   "package without buyer or plan",
			mutate: func(r *models.CheckoutRequest) { r.Plan, r.BuyerID = "", "" },
			fields: map[string]string{"Plan": "required", "BuyerID": "required"},
		},
		{
			name:   "negative credits",
			mutate: func(r *models.CheckoutRequest) { r.Credits = -5 },
			fields: map[string]string{"Credits": "gte"},
		},
		{
			name:   "plan id must be positive when given",
			mutate: func(r *models.CheckoutRequest) { r.PlanID = &zero },
			fields: map[string]string{"PlanID": "gt"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validationCheckout()
			tc.mutate(&req)

			err := vh.ValidateStruct(&req)
			if tc.fields == nil {
				assert.NoError(t, err)
				return
			}

			var fieldErrs validator.ValidationErrors
			require.ErrorAs(t, err, &fieldErrs)
			got := map[string]string{}
			for _, fe := range fieldErrs {
				got[fe.Field()] = fe.Tag()
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestValidationHelper_ValidateRequest(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("unknown transformation", func(t *testing.T) {
		err := vh.ValidateRequest(&models.Image{
			Title:              "Sharpened portrait",
			TransformationType: "sharpen",
			PublicID:           "imaginify/abc",
			SecureURL:          "https://res.cloudinary.com/demo/abc.png",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "TransformationType", appErr.Field)
		assert.Equal(t, "Field Validation Failed on 'oneof' tag", appErr.Message)
	})

	t.Run("valid checkout", func(t *testing.T) {
		req := validationCheckout()
		assert.NoError(t, vh.ValidateRequest(&req))
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("plain message", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Failed to process webhook", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Failed to process webhook", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("checkout field errors become details", func(t *testing.T) {
		req := validationCheckout()
		req.BuyerID = ""
		req.Credits = -1
		validationErr := NewValidationHelper().ValidateStruct(&req)
		require.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, map[string]string{
			"BuyerID": "Field Validation Failed on 'required' tag",
			"Credits": "Field Validation Failed on 'gte' tag",
		}, response.Details)
	})
}

func TestSendAppError(t *testing.T) {
	t.Run("field error carries details", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendAppError(w, apperror.ValidationFailed("creditFee", "creditFee is required"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "creditFee is required", response.Error)
		assert.Equal(t, "creditFee is required", response.Details["creditFee"])
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendAppError(w, apperror.NotFound("user", "u1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "user not found with id u1")
	})

	t.Run("internal details are not leaked", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendAppError(w, errors.New("pq: password authentication failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Contains(t, w.Body.String(), "Internal server error")
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		CreditFee int `json:"creditFee"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"creditFee":-1}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, -1, dst.CreditFee)

	for _, body := range []string{`{"creditFee":`, `{"unknown":1}`, `{"creditFee":1}{"creditFee":2}`} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), r, &dst)
		assert.ErrorIs(t, err, apperror.ErrValidation, body)
	}
}

package routes

import (
	"errors"
	"net/http"

	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

func GetFacilitiesHandler(c echo.Context) error {
	type listFacilitiesParams struct {
		Region       string `query:"region"`
		City         string `query:"city"`
		FacilityType string `query:"facility_type"`
		DatasetID    int64  `query:"dataset_id"`
		Limit        int    `query:"limit"`
	}

	params := new(listFacilitiesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	facilities, err := st.ListFacilities(ctx, store.FacilityFilter{
		Region:       params.Region,
		City:         params.City,
		FacilityType: params.FacilityType,
		DatasetID:    params.DatasetID,
		Limit:        params.Limit,
	})
	if err != nil {
		logger.Error("Failed to list facilities", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, facilities)
}

func GetFacilityHandler(c echo.Context) error {
	type getFacilityParams struct {
		ID string `param:"id" validate:"required"`
	}

	type getFacilityResponse struct {
		Message  string                 `json:"message"`
		Facility *common.FacilityRecord `json:"facility,omitempty"`
	}

	params := new(getFacilityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getFacilityResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getFacilityResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	facility, err := st.GetFacility(ctx, params.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getFacilityResponse{
				Message: "Facility not found",
			})
		}
		logger.Error("Failed to get facility", "facility_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getFacilityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getFacilityResponse{
		Message:  "Facility found",
		Facility: facility,
	})
}

package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"patient-monitor/internal/domain"
)

// Handler implements VitalsServiceServer on top of the snapshot service.
type Handler struct {
	UnimplementedVitalsServiceServer

	service domain.SnapshotService
}

// NewHandler creates a new Handler.
func NewHandler(service domain.SnapshotService) *Handler {
	return &Handler{service: service}
}

// Snapshot returns every stored reading as a list of structs carrying the
// same field names as the HTTP /data response.
func (h *Handler) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	if h == nil || h.service == nil {
		return nil, status.Errorf(codes.Internal, "snapshot service is not configured")
	}

	readings, err := h.service.Snapshot(ctx)
	if err != nil {
		return nil, translateServiceError(err)
	}

	list, err := EncodeReadings(readings)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode readings: %v", err)
	}
	return list, nil
}

func translateServiceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		return status.Error(codes.Unavailable, "ingestion server is not running")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "snapshot: %v", err)
	}
}

// EncodeReadings converts readings to a ListValue through their JSON form.
func EncodeReadings(readings []domain.Reading) (*structpb.ListValue, error) {
	if readings == nil {
		readings = []domain.Reading{}
	}

	raw, err := json.Marshal(readings)
	if err != nil {
		return nil, err
	}

	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return structpb.NewList(values)
}

// DecodeReadings is the inverse of EncodeReadings.
func DecodeReadings(list *structpb.ListValue) ([]domain.Reading, error) {
	raw, err := json.Marshal(list.AsSlice())
	if err != nil {
		return nil, err
	}

	readings := []domain.Reading{}
	if err := json.Unmarshal(raw, &readings); err != nil {
		return nil, fmt.Errorf("decode readings: %w", err)
	}
	return readings, nil
}

var _ VitalsServiceServer = (*Handler)(nil)

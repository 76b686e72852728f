package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/khaihoang/tradedoc_generation_sample/internal/logger"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
)

// MappingListing is the admin view of the mapping config.
type MappingListing struct {
	SheetMappings  map[string]string      `json:"sheet_mappings"`
	HeaderMappings map[string]string      `json:"header_mappings"`
	Fallback       mapping.FallbackConfig `json:"fallback_strategies"`
}

// MappingService is the administrative surface over the mapping config
// file. It is the only writer of that file; generation runs read snapshots.
type MappingService interface {
	List(ctx context.Context) (*MappingListing, error)
	AddSheetMapping(ctx context.Context, raw, canonical string) error
	AddHeaderMapping(ctx context.Context, raw, canonical string) error
	Report(ctx context.Context) (string, error)
}

type mappingService struct {
	configPath string
}

func NewMappingService(configPath string) MappingService {
	return &mappingService{configPath: configPath}
}

func (s *mappingService) List(ctx context.Context) (*MappingListing, error) {
	store, err := mapping.Open(s.configPath)
	if err != nil {
		return nil, err
	}
	table := store.Snapshot()
	return &MappingListing{
		SheetMappings:  table.Sheets,
		HeaderMappings: table.Headers,
		Fallback:       table.Fallback,
	}, nil
}

func (s *mappingService) AddSheetMapping(ctx context.Context, raw, canonical string) error {
	if err := validateMappingPair(raw, canonical); err != nil {
		return err
	}
	store, err := mapping.Open(s.configPath)
	if err != nil {
		return err
	}
	store.AddSheetMapping(raw, canonical)
	if err := store.Save(); err != nil {
		return err
	}
	logger.InfoLog(ctx, "added sheet mapping %q -> %q", raw, canonical)
	return nil
}

func (s *mappingService) AddHeaderMapping(ctx context.Context, raw, canonical string) error {
	if err := validateMappingPair(raw, canonical); err != nil {
		return err
	}
	store, err := mapping.Open(s.configPath)
	if err != nil {
		return err
	}
	store.AddHeaderMapping(raw, canonical)
	if err := store.Save(); err != nil {
		return err
	}
	logger.InfoLog(ctx, "added header mapping %q -> %q", raw, canonical)
	return nil
}

func (s *mappingService) Report(ctx context.Context) (string, error) {
	store, err := mapping.Open(s.configPath)
	if err != nil {
		return "", err
	}
	return store.RenderReport(nil), nil
}

func validateMappingPair(raw, canonical string) error {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(canonical) == "" {
		return fmt.Errorf("mapping needs a raw label and a canonical id")
	}
	return nil
}

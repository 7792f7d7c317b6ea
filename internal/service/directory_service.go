package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// DirectoryService manages the UBS and sector registries. Listing is open
// to every authenticated user; mutation is admin only.
type DirectoryService struct {
	directory repository.DirectoryRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(directory repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{directory: directory}
}

// ListUBS returns all clinic names.
func (s *DirectoryService) ListUBS(ctx context.Context) ([]string, error) {
	names, err := s.directory.ListUBS(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list ubs", nil, err)
	}
	return names, nil
}

// AddUBS registers a clinic.
func (s *DirectoryService) AddUBS(ctx context.Context, session domain.Session, name string) error {
	return s.add(ctx, session, name, s.directory.AddUBS, "add ubs")
}

// RenameUBS renames a clinic.
func (s *DirectoryService) RenameUBS(ctx context.Context, session domain.Session, oldName, newName string) error {
	return s.rename(ctx, session, oldName, newName, s.directory.RenameUBS, "ubs")
}

// RemoveUBS deletes a clinic.
func (s *DirectoryService) RemoveUBS(ctx context.Context, session domain.Session, name string) error {
	return s.remove(ctx, session, name, s.directory.RemoveUBS, "ubs")
}

// ListSectors returns all sector names.
func (s *DirectoryService) ListSectors(ctx context.Context) ([]string, error) {
	names, err := s.directory.ListSectors(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list sectors", nil, err)
	}
	return names, nil
}

// AddSector registers a sector.
func (s *DirectoryService) AddSector(ctx context.Context, session domain.Session, name string) error {
	return s.add(ctx, session, name, s.directory.AddSector, "add sector")
}

// RenameSector renames a sector.
func (s *DirectoryService) RenameSector(ctx context.Context, session domain.Session, oldName, newName string) error {
	return s.rename(ctx, session, oldName, newName, s.directory.RenameSector, "sector")
}

// RemoveSector deletes a sector.
func (s *DirectoryService) RemoveSector(ctx context.Context, session domain.Session, name string) error {
	return s.remove(ctx, session, name, s.directory.RemoveSector, "sector")
}

func (s *DirectoryService) add(ctx context.Context, session domain.Session, name string, op func(context.Context, string) error, operation string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if err := op(ctx, name); err != nil {
		return apperrors.NewPersistenceFailed(operation, name, err)
	}
	return nil
}

func (s *DirectoryService) rename(ctx context.Context, session domain.Session, oldName, newName string, op func(context.Context, string, string) error, resource string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if err := op(ctx, oldName, newName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(resource, map[string]any{"name": oldName})
		}
		return apperrors.NewPersistenceFailed("rename "+resource, oldName, err)
	}
	return nil
}

func (s *DirectoryService) remove(ctx context.Context, session domain.Session, name string, op func(context.Context, string) error, resource string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := op(ctx, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(resource, map[string]any{"name": name})
		}
		return apperrors.NewPersistenceFailed("remove "+resource, name, err)
	}
	return nil
}

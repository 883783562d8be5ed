package services

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// RecordService executes record operations for an already authenticated
// actor. Staff operations recheck the actor's role.
type RecordService struct {
	repos repomanager.RepositoryManager
}

func NewRecordService(repos repomanager.RepositoryManager) *RecordService {
	return &RecordService{repos: repos}
}

func (s *RecordService) Create(ctx context.Context, actor *models.Account, title, body string) (*models.Record, error) {
	rec := &models.Record{Owner: actor.Identity, Title: title, Body: body}
	if err := s.repos.Records().Insert(ctx, rec); err != nil {
		return nil, internal("insert record", err)
	}
	return rec, nil
}

// Get returns an active record owned by actor.
func (s *RecordService) Get(ctx context.Context, actor *models.Account, id string) (*models.Record, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnedActive(rec, actor.Identity); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies patch to an active record owned by actor. An empty patch
// fails with common.ErrNothingToUpdate before the store is consulted.
func (s *RecordService) Update(ctx context.Context, actor *models.Account, id string, patch models.RecordPatch) (*models.Record, error) {
	if patch.Empty() {
		return nil, common.ErrNothingToUpdate
	}

	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*rec)
	if err := s.repos.Records().UpdateContent(ctx, &updated); err != nil {
		return nil, passDeclared("update record", err, common.ErrNotFound)
	}
	return &updated, nil
}

// SoftDelete moves an owned active record to Inactive.
func (s *RecordService) SoftDelete(ctx context.Context, actor *models.Account, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repos.Records().SetActive(ctx, id, false); err != nil {
		return passDeclared("deactivate record", err, common.ErrNotFound)
	}
	return nil
}

// Restore moves an inactive record back to Active. Staff only.
func (s *RecordService) Restore(ctx context.Context, actor *models.Account, id string) (*models.Record, error) {
	if !StaffRoles.Contains(actor.Role) {
		return nil, common.ErrForbidden
	}

	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRestorable(rec); err != nil {
		return nil, err
	}
	if err := s.repos.Records().SetActive(ctx, id, true); err != nil {
		return nil, passDeclared("restore record", err, common.ErrNotFound)
	}

	rec.Active = true
	return rec, nil
}

// ListForOwner returns actor's active records, newest first.
func (s *RecordService) ListForOwner(ctx context.Context, actor *models.Account) ([]*models.Record, error) {
	return s.list(ctx, records.ListFilter{Owner: actor.Identity, ActiveOnly: true})
}

// GetForStaff returns a record in either state.
func (s *RecordService) GetForStaff(ctx context.Context, actor *models.Account, id string) (*models.Record, error) {
	if !StaffRoles.Contains(actor.Role) {
		return nil, common.ErrForbidden
	}
	return s.find(ctx, id)
}

// ListForStaff returns records in either state, optionally for one owner.
func (s *RecordService) ListForStaff(ctx context.Context, actor *models.Account, owner string) ([]*models.Record, error) {
	if !StaffRoles.Contains(actor.Role) {
		return nil, common.ErrForbidden
	}
	return s.list(ctx, records.ListFilter{Owner: owner})
}

func (s *RecordService) find(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.repos.Records().FindByID(ctx, id)
	if err != nil {
		return nil, passDeclared("find record", err, common.ErrNotFound)
	}
	return rec, nil
}

func (s *RecordService) list(ctx context.Context, filter records.ListFilter) ([]*models.Record, error) {
	out, err := s.repos.Records().List(ctx, filter)
	if err != nil {
		return nil, internal("list records", err)
	}
	return out, nil
}

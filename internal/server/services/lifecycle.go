package services

import (
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Record lifecycle: Active <-> Inactive. Owner-scoped checks report absence,
// foreign ownership and wrong state as the same common.ErrNotFound.

func checkOwnedActive(rec *models.Record, actor string) error {
	if rec == nil || rec.Owner != actor || !rec.Active {
		return common.ErrNotFound
	}
	return nil
}

func checkRestorable(rec *models.Record) error {
	if rec == nil || rec.Active {
		return common.ErrNotFound
	}
	return nil
}

// Package purge performs cascading multi-table deletes as single
// transactions, with an explicit per-table order instead of foreign-key
// triggered cascades so the sequence stays auditable.
package purge

import (
	"context"

	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/storage/sqlite"
)

type Purger struct {
	store *sqlite.Store
	log   *zap.Logger
}

func New(store *sqlite.Store, log *zap.Logger) *Purger {
	return &Purger{store: store, log: log}
}

// DeleteFaultReport removes one fault report and its attached photos in
// one transaction. ErrNotFound when the report does not exist; in that
// case nothing is removed, photos included.
func (p *Purger) DeleteFaultReport(ctx context.Context, id string) error {
	var photos int64
	err := p.store.WithTx(ctx, func(tx *sqlite.Tx) error {
		n, err := tx.DeleteFaultPhotosByFault(ctx, id)
		if err != nil {
			return err
		}
		photos = n
		return tx.DeleteFaultReport(ctx, id)
	})
	if err != nil {
		return err
	}
	p.log.Info("fault report purged",
		zap.String("fault_id", id),
		zap.Int64("photos", photos))
	return nil
}

// DeleteUserData removes the user row and every row referencing the user,
// all-or-nothing: photos of the user's fault reports, the fault reports,
// the user's reminders, then the user itself. No interleaved reader ever
// sees a state where the user is gone but a referencing row remains.
func (p *Purger) DeleteUserData(ctx context.Context, userID string) error {
	var reminders, faults, photos int64
	err := p.store.WithTx(ctx, func(tx *sqlite.Tx) error {
		n, err := tx.DeleteFaultPhotosByReporter(ctx, userID)
		if err != nil {
			return err
		}
		photos = n
		if faults, err = tx.DeleteFaultReportsByUser(ctx, userID); err != nil {
			return err
		}
		if reminders, err = tx.DeleteRemindersByUser(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	p.log.Info("user data purged",
		zap.String("user_id", userID),
		zap.Int64("reminders", reminders),
		zap.Int64("fault_reports", faults),
		zap.Int64("photos", photos))
	return nil
}

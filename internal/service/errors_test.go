package service

import (
	"context"
	"errors"
	"testing"

	"go-inventory-po/internal/dbtest"
	"go-inventory-po/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	cases := map[string]struct {
		err  error
		want error
	}{
		"record not found":     {gorm.ErrRecordNotFound, ErrNotFound},
		"duplicated key":       {gorm.ErrDuplicatedKey, ErrDuplicateKey},
		"foreign key violated": {gorm.ErrForeignKeyViolated, ErrReferentialIntegrity},
		"sqlite trigger code":  {errors.New("FOREIGN KEY constraint failed"), ErrReferentialIntegrity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tc.err, "product"), tc.want)
		})
	}

	other := errors.New("disk I/O error")
	assert.Equal(t, other, translate(other, "product"))
	assert.NoError(t, translate(nil, "product"))
}

func TestTranslateReferencedProductDelete(t *testing.T) {
	l := newLedger(t, ConfirmRepeatable)
	a := dbtest.Product(t, l.db, "A", "Alpha", 0)
	_, err := l.orders.CreatePurchaseOrder(context.Background(), orderFor(lineFor(a, 1, "1.00")))
	require.NoError(t, err)

	// Skip the reference count and let the database reject the delete.
	err = repository.NewProductRepo(l.db).Delete(l.db, a.ID)
	require.Error(t, err)
	assert.ErrorIs(t, translate(err, "product"), ErrReferentialIntegrity)
}

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
	"github.com/oskarw/glbook/internal/service/account"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/storage/memory"
)

func newService(t *testing.T) (*memory.Store, account.Service, uuid.UUID) {
	t.Helper()
	store := memory.New()
	companyID := uuid.New()
	store.SeedCompany(gl.Company{ID: companyID, Name: "Acme Ltd"})
	aud := audit.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return store, account.New(store, store, aud), companyID
}

func TestCreateAndGetCaseInsensitive(t *testing.T) {
	_, svc, companyID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, gl.Account{CompanyID: companyID, Code: "N100", Name: "Cash", Type: gl.AccountTypeAsset})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(ctx, companyID, "n100")
	require.NoError(t, err)
	require.Equal(t, "N100", got.Code)
}

func TestCreateValidation(t *testing.T) {
	_, svc, companyID := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		acc  gl.Account
	}{
		{"missing code", gl.Account{CompanyID: companyID, Name: "Cash", Type: gl.AccountTypeAsset}},
		{"missing name", gl.Account{CompanyID: companyID, Code: "1000", Type: gl.AccountTypeAsset}},
		{"unknown type", gl.Account{CompanyID: companyID, Code: "1000", Name: "Cash", Type: "Revenue"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.acc)
			require.ErrorIs(t, err, errs.ErrInvalid)
		})
	}
}

func TestCreateDuplicateCodeAudited(t *testing.T) {
	store, svc, companyID := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, gl.Account{CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, gl.Account{CompanyID: companyID, Code: "1000 ", Name: "Petty Cash", Type: gl.AccountTypeAsset})
	require.ErrorIs(t, err, errs.ErrDuplicateAccountCode)

	var dup bool
	for _, ev := range store.AuditEvents() {
		if ev.Code == "ACCOUNTS_CODE_DUP" {
			dup = true
		}
	}
	require.True(t, dup, "expected an ACCOUNTS_CODE_DUP audit event")
}

func TestUpdateKeepsCode(t *testing.T) {
	_, svc, companyID := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, gl.Account{CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, companyID, "1000", "Bank", gl.AccountTypeAsset)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "1000", updated.Code)
	require.Equal(t, "Bank", updated.Name)
}

func TestUpdateMissingAccount(t *testing.T) {
	_, svc, companyID := newService(t)
	_, err := svc.Update(context.Background(), companyID, "9999", "Ghost", gl.AccountTypeAsset)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteRestrictedWhileReferenced(t *testing.T) {
	store, svc, companyID := newService(t)
	ctx := context.Background()
	for _, a := range []gl.Account{
		{CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
		{CompanyID: companyID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
	} {
		_, err := svc.Create(ctx, a)
		require.NoError(t, err)
	}

	aud := audit.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	post := posting.New(store, store, aud)
	amount := decimal.NewFromInt(100)
	_, err := post.Create(ctx, posting.Input{
		CompanyID: companyID, TransactionNo: 1, Date: time.Now().UTC(),
		Lines: []posting.Line{
			{AccountCode: "1000", Amount: amount, Side: "DR"},
			{AccountCode: "4000", Amount: amount, Side: "CR"},
		},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, companyID, "1000")
	require.ErrorIs(t, err, errs.ErrConflict)

	// Once the referencing transaction goes, deletion succeeds.
	require.NoError(t, post.Delete(ctx, companyID, 1))
	require.NoError(t, svc.Delete(ctx, companyID, "1000"))
	_, err = svc.Get(ctx, companyID, "1000")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	_, svc, companyID := newService(t)
	require.NoError(t, svc.Delete(context.Background(), companyID, "9999"))
}

func TestListFiltersByCodeOrName(t *testing.T) {
	_, svc, companyID := newService(t)
	ctx := context.Background()
	for _, a := range []gl.Account{
		{CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
		{CompanyID: companyID, Code: "1100", Name: "Bank", Type: gl.AccountTypeAsset},
		{CompanyID: companyID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
	} {
		_, err := svc.Create(ctx, a)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, companyID, "10", 1, 50)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "1000", items[0].Code)

	items, total, err = svc.List(ctx, companyID, "sales", 1, 50)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "4000", items[0].Code)
}

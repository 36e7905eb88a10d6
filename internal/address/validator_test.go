package address

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

type fakeNamespace struct {
	mu      sync.RWMutex
	records map[string]*domain.AddressRecord
	err     error
}

func newFakeNamespace(recs ...domain.AddressRecord) *fakeNamespace {
	ns := &fakeNamespace{records: map[string]*domain.AddressRecord{}}
	for i := range recs {
		ns.records[recs[i].Name] = &recs[i]
	}
	return ns
}

func (f *fakeNamespace) LookupAddress(_ context.Context, name string) (*domain.AddressRecord, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, false, f.err
	}
	rec, ok := f.records[name]
	return rec, ok, nil
}

type fakeClaims map[string]string

func (f fakeClaims) PendingOwner(_ context.Context, name string) (string, bool, error) {
	owner, ok := f[name]
	return owner, ok, nil
}

func newTestValidator(ns Namespace, claims PendingClaims) *Validator {
	return NewValidator("maitr.de", DefaultReserved, ns, claims, nil)
}

func TestValidate_TooShortIsInvalid(t *testing.T) {
	v := newTestValidator(newFakeNamespace(), nil)
	res, err := v.Validate(context.Background(), "ab", "owner-1")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, ReasonInvalid, res.Reason)
	assert.Empty(t, res.Suggestions)
	assert.Empty(t, res.FullAddress)
	assert.NotEmpty(t, res.Detail)
}

func TestValidate_ReservedGetsSuggestions(t *testing.T) {
	v := newTestValidator(newFakeNamespace(), nil)
	res, err := v.Validate(context.Background(), "admin", "owner-1")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, ReasonReserved, res.Reason)
	assert.Equal(t, []string{"admin-2", "admin-3", "admin-4"}, res.Suggestions)
	assert.Equal(t, "admin.maitr.de", res.FullAddress)
}

func TestValidate_AvailableThenTaken(t *testing.T) {
	ns := newFakeNamespace()
	v := newTestValidator(ns, nil)

	res, err := v.Validate(context.Background(), "Bella Vista!", "owner-1")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, "bella-vista", res.Name)
	assert.Equal(t, "bella-vista.maitr.de", res.FullAddress)

	ns.records["bella-vista"] = &domain.AddressRecord{Name: "bella-vista", OwnerID: "owner-2", Status: domain.AddressOwned}

	res, err = v.Validate(context.Background(), "bella-vista", "owner-1")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, ReasonTaken, res.Reason)
	assert.Equal(t, []string{"bella-vista-2", "bella-vista-3", "bella-vista-4"}, res.Suggestions)
}

func TestValidate_SameOwnerIsOwned(t *testing.T) {
	ns := newFakeNamespace(domain.AddressRecord{Name: "bella-vista", OwnerID: "owner-1", Status: domain.AddressOwned})
	v := newTestValidator(ns, nil)

	res, err := v.Validate(context.Background(), "bella-vista", "owner-1")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, ReasonOwned, res.Reason)

	// anonymous callers never own anything
	res, err = v.Validate(context.Background(), "bella-vista", "")
	require.NoError(t, err)
	assert.Equal(t, ReasonTaken, res.Reason)
}

func TestValidate_StoredReservedRecord(t *testing.T) {
	ns := newFakeNamespace(domain.AddressRecord{Name: "maitr-team", Status: domain.AddressReserved})
	v := newTestValidator(ns, nil)

	res, err := v.Validate(context.Background(), "maitr-team", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, ReasonReserved, res.Reason)
	assert.NotEmpty(t, res.Suggestions)
}

func TestValidate_PendingClaim(t *testing.T) {
	v := newTestValidator(newFakeNamespace(), fakeClaims{"corner-cafe": "owner-2"})

	res, err := v.Validate(context.Background(), "corner-cafe", "owner-1")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, ReasonPending, res.Reason)

	res, err = v.Validate(context.Background(), "corner-cafe", "owner-2")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestValidate_NamespaceErrorPropagates(t *testing.T) {
	ns := newFakeNamespace()
	ns.err = errors.New("connection refused")
	v := newTestValidator(ns, nil)

	_, err := v.Validate(context.Background(), "bella-vista", "owner-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ns.err)
}

func TestSuggest_SkipsClaimedAndCapsAttempts(t *testing.T) {
	ns := newFakeNamespace(
		domain.AddressRecord{Name: "pizza-2", OwnerID: "x", Status: domain.AddressOwned},
		domain.AddressRecord{Name: "pizza-3", OwnerID: "x", Status: domain.AddressOwned},
		domain.AddressRecord{Name: "pizza-4", OwnerID: "x", Status: domain.AddressOwned},
		domain.AddressRecord{Name: "pizza-5", OwnerID: "x", Status: domain.AddressOwned},
	)
	v := newTestValidator(ns, nil)

	assert.Equal(t, []string{"pizza-6"}, v.Suggest(context.Background(), "pizza", "owner-1"))

	ns.records["pizza-6"] = &domain.AddressRecord{Name: "pizza-6", OwnerID: "x", Status: domain.AddressOwned}
	assert.Empty(t, v.Suggest(context.Background(), "pizza", "owner-1"))
}

func TestSuggest_SkipsNamesPendingForAnotherOwner(t *testing.T) {
	ns := newFakeNamespace(domain.AddressRecord{Name: "corner-cafe", OwnerID: "x", Status: domain.AddressOwned})
	v := newTestValidator(ns, fakeClaims{"corner-cafe-2": "owner-2", "corner-cafe-3": "owner-1"})

	res, err := v.Validate(context.Background(), "corner-cafe", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, ReasonTaken, res.Reason)
	assert.Equal(t, []string{"corner-cafe-3", "corner-cafe-4", "corner-cafe-5"}, res.Suggestions)

	// every suggestion must itself validate as available for the same owner
	for _, s := range res.Suggestions {
		r, err := v.Validate(context.Background(), s, "owner-1")
		require.NoError(t, err)
		assert.True(t, r.Available, s)
	}

	assert.Equal(t, []string{"corner-cafe-4", "corner-cafe-5", "corner-cafe-6"}, v.Suggest(context.Background(), "corner-cafe", ""))
}

func TestSuggest_LongNamesStayWithinLimit(t *testing.T) {
	v := newTestValidator(newFakeNamespace(), nil)
	long := "a123456789b123456789c123456789d123456789e123456789f123456789xyz"
	require.Len(t, long, MaxLength)
	for _, s := range v.Suggest(context.Background(), long, "") {
		assert.LessOrEqual(t, len(s), MaxLength)
		assert.NoError(t, CheckFormat(s))
	}
}

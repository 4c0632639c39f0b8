package appstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/gateway"
	"profilehub/internal/profile"
	"profilehub/internal/storage"
)

// fakeGateway 以記憶體模擬 gateway；err 非 nil 時所有操作回傳該錯誤。
type fakeGateway struct {
	mu    sync.Mutex
	items []profile.Profile
	seq   int
	err   error
	// block 非 nil 時，操作會等待其關閉，用於觀察 Loading。
	block chan struct{}
}

func (f *fakeGateway) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeGateway) List(context.Context) ([]profile.Profile, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]profile.Profile{}, f.items...), nil
}

func (f *fakeGateway) Save(_ context.Context, p profile.Profile) (profile.Profile, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return profile.Profile{}, f.err
	}
	if p.ID == "" {
		f.seq++
		p.ID = string(rune('a' + f.seq - 1))
		f.items = append(f.items, p)
		return p, nil
	}
	for i := range f.items {
		if f.items[i].ID == p.ID {
			f.items[i] = p
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (f *fakeGateway) Delete(_ context.Context, id string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return profile.ErrNotFound
}

func person(first string) profile.Profile {
	return profile.Profile{FirstName: first, LastName: "L", Email: first + "@x.com"}
}

func seeded(t *testing.T, names ...string) (*Container, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{}
	for _, n := range names {
		_, err := gw.Save(context.Background(), person(n))
		require.NoError(t, err)
	}
	return New(gw), gw
}

func TestNewIsEmpty(t *testing.T) {
	c := New(&fakeGateway{})
	s := c.State()
	assert.NotNil(t, s.Profiles)
	assert.Empty(t, s.Profiles)
	assert.Empty(t, s.CurrentProfileID)
	assert.False(t, s.Loading)
	assert.Equal(t, KindNone, s.ErrorKind)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestFetchAllSelectsFirstWhenNothingSelected(t *testing.T) {
	c, _ := seeded(t, "ada", "bob")
	require.NoError(t, c.FetchAll(context.Background()))

	s := c.State()
	require.Len(t, s.Profiles, 2)
	assert.Equal(t, "a", s.CurrentProfileID)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "ada", cur.FirstName)
}

func TestFetchAllKeepsExistingSelection(t *testing.T) {
	c, _ := seeded(t, "ada", "bob")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))
	require.NoError(t, c.SelectCurrent("b"))

	require.NoError(t, c.FetchAll(ctx))
	assert.Equal(t, "b", c.State().CurrentProfileID)
}

func TestFetchAllRepairsSelectionMissingFromNewList(t *testing.T) {
	c, gw := seeded(t, "ada", "bob")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))
	require.NoError(t, c.SelectCurrent("b"))

	// 後端切換後 bob 不在新清單中
	gw.items = gw.items[:1]
	require.NoError(t, c.FetchAll(ctx))
	s := c.State()
	require.Len(t, s.Profiles, 1)
	assert.Equal(t, "a", s.CurrentProfileID)
	_, ok := c.Current()
	assert.True(t, ok)

	gw.items = nil
	require.NoError(t, c.FetchAll(ctx))
	assert.Empty(t, c.State().CurrentProfileID)
}

func TestFetchAllEmptyLeavesNoSelection(t *testing.T) {
	c := New(&fakeGateway{})
	require.NoError(t, c.FetchAll(context.Background()))
	assert.Empty(t, c.State().CurrentProfileID)
}

func TestSaveAppendsAndSelects(t *testing.T) {
	c, _ := seeded(t, "ada")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))

	saved, err := c.Save(ctx, person("bob"))
	require.NoError(t, err)
	s := c.State()
	require.Len(t, s.Profiles, 2)
	assert.Equal(t, saved.ID, s.CurrentProfileID)
	assert.Equal(t, saved, s.Profiles[1])
}

func TestSaveReplacesInPlace(t *testing.T) {
	c, _ := seeded(t, "ada", "bob")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))

	p := c.State().Profiles[1]
	p.FirstName = "Robert"
	_, err := c.Save(ctx, p)
	require.NoError(t, err)

	s := c.State()
	require.Len(t, s.Profiles, 2)
	assert.Equal(t, "Robert", s.Profiles[1].FirstName)
	assert.Equal(t, "b", s.CurrentProfileID)
}

func TestDeleteCurrentRepairsSelection(t *testing.T) {
	c, _ := seeded(t, "ada", "bob", "cy")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))
	require.NoError(t, c.SelectCurrent("b"))

	require.NoError(t, c.Delete(ctx, "b"))
	s := c.State()
	require.Len(t, s.Profiles, 2)
	assert.Equal(t, "a", s.CurrentProfileID)

	require.NoError(t, c.Delete(ctx, "a"))
	assert.Equal(t, "c", c.State().CurrentProfileID)

	require.NoError(t, c.Delete(ctx, "c"))
	s = c.State()
	assert.Empty(t, s.Profiles)
	assert.Empty(t, s.CurrentProfileID)
}

func TestDeleteOtherKeepsSelection(t *testing.T) {
	c, _ := seeded(t, "ada", "bob")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))

	require.NoError(t, c.Delete(ctx, "b"))
	assert.Equal(t, "a", c.State().CurrentProfileID)
}

func TestFailureLeavesDataUnchanged(t *testing.T) {
	c, gw := seeded(t, "ada", "bob")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))
	before := c.State()

	gw.err = &gateway.UnknownError{Op: "delete", Err: storage.ErrClosed}
	err := c.Delete(ctx, "a")
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, before.Profiles, s.Profiles)
	assert.Equal(t, before.CurrentProfileID, s.CurrentProfileID)
	assert.False(t, s.Loading)
	assert.Equal(t, KindUnknown, s.ErrorKind)
	assert.Equal(t, err.Error(), s.Error)

	_, err = c.Save(ctx, person("cy"))
	require.Error(t, err)
	assert.Len(t, c.State().Profiles, 2)
}

func TestErrorKinds(t *testing.T) {
	c, _ := seeded(t, "ada")
	ctx := context.Background()
	require.NoError(t, c.FetchAll(ctx))

	_, err := c.Save(ctx, profile.Profile{FirstName: "x", LastName: "y", Email: "z@x.com", ID: "missing"})
	require.ErrorIs(t, err, profile.ErrNotFound)
	assert.Equal(t, KindNotFound, c.State().ErrorKind)

	err = c.Delete(ctx, "missing")
	require.ErrorIs(t, err, profile.ErrNotFound)
	assert.Equal(t, KindNotFound, c.State().ErrorKind)
}

func TestValidationErrorExposesFields(t *testing.T) {
	gw := &fakeGateway{err: &profile.ValidationError{Missing: []string{"firstName"}, Invalid: []string{"email"}}}
	c := New(gw)

	_, err := c.Save(context.Background(), profile.Profile{})
	require.Error(t, err)
	s := c.State()
	assert.Equal(t, KindValidation, s.ErrorKind)
	assert.Equal(t, []string{"firstName", "email"}, s.InvalidFields)

	c.ClearError()
	s = c.State()
	assert.Empty(t, s.Error)
	assert.Equal(t, KindNone, s.ErrorKind)
	assert.Nil(t, s.InvalidFields)
}

func TestNextIntentClearsError(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	c := New(gw)
	ctx := context.Background()
	require.Error(t, c.FetchAll(ctx))
	assert.Equal(t, "boom", c.State().Error)

	gw.err = nil
	require.NoError(t, c.FetchAll(ctx))
	assert.Empty(t, c.State().Error)
	assert.Equal(t, KindNone, c.State().ErrorKind)
}

func TestLoadingWhileInFlight(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	c := New(gw)

	done := make(chan error)
	go func() { done <- c.FetchAll(context.Background()) }()

	require.Eventually(t, func() bool { return c.State().Loading }, time.Second, time.Millisecond)
	close(gw.block)
	require.NoError(t, <-done)
	assert.False(t, c.State().Loading)
}

func TestSelectAndClearCurrent(t *testing.T) {
	c, _ := seeded(t, "ada", "bob")
	require.NoError(t, c.FetchAll(context.Background()))

	assert.ErrorIs(t, c.SelectCurrent("zzz"), ErrUnknownProfile)
	assert.Equal(t, "a", c.State().CurrentProfileID)

	require.NoError(t, c.SelectCurrent("b"))
	assert.Equal(t, "b", c.State().CurrentProfileID)

	c.ClearCurrent()
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestStateIsACopy(t *testing.T) {
	c, _ := seeded(t, "ada")
	require.NoError(t, c.FetchAll(context.Background()))

	s := c.State()
	s.Profiles[0].FirstName = "mutated"
	assert.Equal(t, "ada", c.State().Profiles[0].FirstName)
}

func TestSubscribeSeesTransitions(t *testing.T) {
	c, _ := seeded(t, "ada")
	var (
		mu      sync.Mutex
		loading []bool
	)
	c.Subscribe(func(s State) {
		mu.Lock()
		loading = append(loading, s.Loading)
		mu.Unlock()
	})

	require.NoError(t, c.FetchAll(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, loading)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindValidation, Classify(&profile.ValidationError{Missing: []string{"email"}}))
	assert.Equal(t, KindNotFound, Classify(profile.ErrNotFound))
	assert.Equal(t, KindUnknown, Classify(&gateway.UnknownError{Op: "list", Err: errors.New("x")}))
	assert.Equal(t, "not_found", KindNotFound.String())
}

package storefront

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/docstore/docstoretest"
	"github.com/marcus/storefront/internal/gate"
	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/probe"
	"github.com/marcus/storefront/internal/remote"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newConnected returns a loaded store over an in-memory remote wrapped in
// fault injection.
func newConnected(t *testing.T, policy WritePolicy) (*Store, *docstoretest.Faulty, *docstore.Memory) {
	t.Helper()
	mem := docstore.NewMemory()
	f := docstoretest.NewFaulty(mem)
	s := New(Options{Remote: f, Policy: policy, Now: func() time.Time { return fixedNow }})
	st := s.Load(context.Background())
	if !st.Connected || st.LastError != "" {
		t.Fatalf("load state = %+v", st)
	}
	return s, f, mem
}

func newOffline(t *testing.T) (*Store, *docstoretest.Faulty) {
	t.Helper()
	f := docstoretest.NewFaulty(docstore.Offline{})
	s := New(Options{Remote: f, Now: func() time.Time { return fixedNow }})
	st := s.Load(context.Background())
	if st.Connected {
		t.Fatal("offline store reported connected")
	}
	return s, f
}

func espresso() models.MenuItem {
	return models.MenuItem{Name: "Ristretto", Price: 2.2, Category: "cafe", Available: true}
}

func TestNewHoldsDefaults(t *testing.T) {
	s := New(Options{})
	if got := len(s.MenuItems()); got != len(models.DefaultMenuItems()) {
		t.Fatalf("items = %d", got)
	}
	if len(s.Reservations()) != 0 {
		t.Fatal("reservations not empty")
	}
	if s.Config() != models.DefaultConfig() {
		t.Fatal("config is not the default")
	}
	if len(s.Categories()) != len(models.DefaultCategories()) {
		t.Fatal("categories are not the defaults")
	}
	if st := s.State(); st.Connected || st.Loading {
		t.Fatalf("state = %+v", st)
	}
}

func TestGettersReturnCopies(t *testing.T) {
	s := New(Options{})
	items := s.MenuItems()
	items[0].Name = "mutated"
	if it, _ := s.MenuItem(items[0].ID); it.Name == "mutated" {
		t.Fatal("MenuItems aliases the cache")
	}
	cats := s.Categories()
	cats[0].Name = "mutated"
	if s.Categories()[0].Name == "mutated" {
		t.Fatal("Categories aliases the cache")
	}
}

func TestLoadOfflineKeepsDefaults(t *testing.T) {
	s, _ := newOffline(t)
	st := s.State()
	if st.Loading {
		t.Fatal("loading not cleared")
	}
	if !strings.Contains(st.LastError, "not configured") {
		t.Fatalf("lastError = %q", st.LastError)
	}
	if len(s.MenuItems()) != len(models.DefaultMenuItems()) {
		t.Fatal("offline load changed the menu")
	}
}

func TestOfflineMutationsStayLocal(t *testing.T) {
	s, f := newOffline(t)
	ctx := context.Background()
	before := f.TotalCalls()

	id, err := s.AddMenuItem(ctx, espresso())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.UpdateMenuItem(ctx, "1", models.MenuItemPatch{Price: ptr(9.0)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.DeleteMenuItem(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.UpdateMenuItem(ctx, id, models.MenuItemPatch{Name: ptr("Doppio")}); err != nil {
		t.Fatalf("update new: %v", err)
	}
	s.Wait()

	if f.TotalCalls() != before {
		t.Fatalf("remote calls while offline: %d", f.TotalCalls()-before)
	}

	want := models.DefaultMenuItems()
	want[0].Price = 9
	want = append(want[:1], want[2:]...)
	added := espresso()
	added.ID = id
	added.Name = "Doppio"
	want = append(want, added)

	got := s.MenuItems()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadSeedsEmptyRemote(t *testing.T) {
	s, _, mem := newConnected(t, nil)
	ctx := context.Background()
	defaults := models.DefaultMenuItems()

	if mem.Len(remote.CollMenuItems) != len(defaults) {
		t.Fatalf("remote items = %d, want %d", mem.Len(remote.CollMenuItems), len(defaults))
	}
	snaps, err := mem.List(ctx, remote.CollMenuItems)
	if err != nil {
		t.Fatal(err)
	}
	got := s.MenuItems()
	if len(got) != len(defaults) {
		t.Fatalf("local items = %d", len(got))
	}
	for i, it := range got {
		if it.ID != snaps[i].ID {
			t.Fatalf("item %d id = %s, remote id %s", i, it.ID, snaps[i].ID)
		}
		want := defaults[i]
		want.ID = it.ID
		if it != want {
			t.Fatalf("item %d = %+v, want %+v", i, it, want)
		}
	}

	if _, err := mem.Get(ctx, remote.CollConfig, remote.DocBusiness); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if s.Config() != models.DefaultConfig() {
		t.Fatal("config after seeding is not the default")
	}

	// A second load sees a populated remote and does not seed again.
	s.Load(ctx)
	if mem.Len(remote.CollMenuItems) != len(defaults) {
		t.Fatalf("reseeded: %d items", mem.Len(remote.CollMenuItems))
	}
}

func TestLoadSeedFailure(t *testing.T) {
	mem := docstore.NewMemory()
	f := docstoretest.NewFaulty(mem)
	f.FailOn(docstoretest.OpAdd, remote.CollMenuItems, nil)
	s := New(Options{Remote: f})

	st := s.Load(context.Background())
	if !st.Connected || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	if !strings.Contains(st.LastError, "seed") {
		t.Fatalf("lastError = %q", st.LastError)
	}
	if f.Calls(docstoretest.OpAdd) != 1 {
		t.Fatalf("seeding continued after failure: %d adds", f.Calls(docstoretest.OpAdd))
	}
	if len(s.MenuItems()) != len(models.DefaultMenuItems()) {
		t.Fatal("defaults not kept")
	}
}

func TestLoadMergesRemoteConfig(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	if _, err := mem.Add(ctx, remote.CollMenuItems, docstore.Document{"name": "Tea", "price": 1.5, "category": "cafe", "available": true}); err != nil {
		t.Fatal(err)
	}
	if err := mem.Set(ctx, remote.CollConfig, remote.DocBusiness, docstore.Document{"name": "X"}); err != nil {
		t.Fatal(err)
	}
	s := New(Options{Remote: mem})
	if st := s.Load(ctx); st.LastError != "" {
		t.Fatalf("lastError = %q", st.LastError)
	}

	want := models.DefaultConfig()
	want.Name = "X"
	if got := s.Config(); got != want {
		t.Fatalf("config = %+v", got)
	}
	items := s.MenuItems()
	if len(items) != 1 || items[0].Name != "Tea" {
		t.Fatalf("items = %+v", items)
	}
	if mem.Len(remote.CollMenuItems) != 1 {
		t.Fatal("populated remote was seeded")
	}
}

func TestLoadKeepsCredentialWithMalformedConfigField(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	if _, err := mem.Add(ctx, remote.CollMenuItems, docstore.Document{"name": "Tea", "price": 1.5, "category": "cafe", "available": true}); err != nil {
		t.Fatal(err)
	}
	if err := mem.Set(ctx, remote.CollConfig, remote.DocBusiness, docstore.Document{
		"name": "X", "header": "solid", "adminPassword": "s3cret",
	}); err != nil {
		t.Fatal(err)
	}
	s := New(Options{Remote: mem})
	st := s.Load(ctx)
	if !strings.Contains(st.LastError, "header") {
		t.Fatalf("lastError = %q", st.LastError)
	}
	cfg := s.Config()
	if cfg.Name != "X" || cfg.AdminPassword != "s3cret" {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Header != models.DefaultConfig().Header {
		t.Fatalf("header = %+v", cfg.Header)
	}
}

func TestLoadAdoptsNonEmptyListsOnly(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	mem.Add(ctx, remote.CollMenuItems, docstore.Document{"name": "Tea", "category": "tea"})
	adapter := remote.New(mem)
	cats := []models.Category{{ID: "tea", Name: "Tea", Icon: "🍵"}}
	if err := adapter.SaveCategories(ctx, cats); err != nil {
		t.Fatal(err)
	}

	s := New(Options{Remote: mem})
	s.Load(ctx)
	if got := s.Categories(); len(got) != 1 || got[0] != cats[0] {
		t.Fatalf("categories = %+v", got)
	}

	// An empty stored list does not replace the cache.
	if err := adapter.SaveCategories(ctx, nil); err != nil {
		t.Fatal(err)
	}
	s.Load(ctx)
	if len(s.Categories()) != 1 {
		t.Fatal("empty remote category list replaced the cache")
	}
	if len(s.Reservations()) != 0 {
		t.Fatal("reservations appeared from nowhere")
	}
}

func TestLoadFetchFailuresAreIndependent(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	mem.Add(ctx, remote.CollMenuItems, docstore.Document{"name": "Tea", "category": "cafe"})
	f := docstoretest.NewFaulty(mem)
	f.FailOn(docstoretest.OpList, remote.CollReservations, nil)

	s := New(Options{Remote: f})
	st := s.Load(ctx)
	if !st.Connected || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	if !strings.Contains(st.LastError, "list reservations") {
		t.Fatalf("lastError = %q", st.LastError)
	}
	if items := s.MenuItems(); len(items) != 1 {
		t.Fatalf("menu not adopted: %d items", len(items))
	}
}

func TestLoadProbeReadMissing(t *testing.T) {
	f := docstoretest.NewFaulty(docstore.NewMemory())
	f.FailOn(docstoretest.OpGet, probe.Collection, docstore.ErrNotFound)
	s := New(Options{Remote: f})

	st := s.Load(context.Background())
	if st.Connected {
		t.Fatal("connected with missing readback")
	}
	if st.LastError == "" {
		t.Fatal("lastError empty")
	}
	if f.Calls(docstoretest.OpList) != 0 {
		t.Fatal("fetched after failed probe")
	}
}

func TestRefreshReconnects(t *testing.T) {
	mem := docstore.NewMemory()
	f := docstoretest.NewFaulty(mem)
	f.FailOn(docstoretest.OpSet, probe.Collection, nil)
	s := New(Options{Remote: f})
	ctx := context.Background()

	if s.Load(ctx).Connected {
		t.Fatal("connected despite failing probe")
	}
	f.Heal()
	st := s.Refresh(ctx)
	if !st.Connected || st.LastError != "" {
		t.Fatalf("state after refresh = %+v", st)
	}
	if mem.Len(remote.CollMenuItems) == 0 {
		t.Fatal("refresh did not seed")
	}
}

func TestAddConfirmedGetsRemoteID(t *testing.T) {
	s, _, mem := newConnected(t, nil)
	ctx := context.Background()

	tempID, err := s.AddMenuItem(ctx, espresso())
	if err != nil {
		t.Fatal(err)
	}
	if !IsTempID(tempID) {
		t.Fatalf("returned id %q is not temporary", tempID)
	}
	s.Wait()

	var matches []models.MenuItem
	for _, it := range s.MenuItems() {
		if it.Name == "Ristretto" {
			matches = append(matches, it)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("entries = %d, want 1", len(matches))
	}
	if IsTempID(matches[0].ID) {
		t.Fatal("temporary id survived confirmation")
	}
	doc, err := mem.Get(ctx, remote.CollMenuItems, matches[0].ID)
	if err != nil {
		t.Fatalf("remote copy: %v", err)
	}
	if _, ok := doc["id"]; ok {
		t.Fatal("id stored inside the document")
	}
	if _, ok := s.MenuItem(tempID); ok {
		t.Fatal("temp id still resolvable")
	}
}

func TestAddVisibleBeforeConfirmation(t *testing.T) {
	s, f, _ := newConnected(t, nil)
	ctx := context.Background()
	release := f.Hold(docstoretest.OpAdd)
	defer release()

	tempID, err := s.AddMenuItem(ctx, espresso())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.MenuItem(tempID); !ok {
		t.Fatal("item not visible while remote create is pending")
	}
	last := s.MenuItems()[len(s.MenuItems())-1]
	if last.ID != tempID {
		t.Fatalf("last id = %s", last.ID)
	}
	release()
	s.Wait()
	if _, ok := s.MenuItem(tempID); ok {
		t.Fatal("temp id not replaced")
	}
}

func TestAddFailureKeepsTempID(t *testing.T) {
	s, f, mem := newConnected(t, nil)
	ctx := context.Background()
	f.FailOn(docstoretest.OpAdd, remote.CollMenuItems, nil)
	n := mem.Len(remote.CollMenuItems)

	tempID, err := s.AddMenuItem(ctx, espresso())
	if err != nil {
		t.Fatal(err)
	}
	s.Wait()

	count := 0
	for _, it := range s.MenuItems() {
		if it.Name == "Ristretto" {
			count++
			if it.ID != tempID {
				t.Fatalf("id = %s, want %s", it.ID, tempID)
			}
		}
	}
	if count != 1 {
		t.Fatalf("entries = %d", count)
	}
	if mem.Len(remote.CollMenuItems) != n {
		t.Fatal("remote changed despite failure")
	}
}

func TestDeleteWhileCreatePending(t *testing.T) {
	s, f, mem := newConnected(t, nil)
	ctx := context.Background()
	n := mem.Len(remote.CollMenuItems)

	release := f.Hold(docstoretest.OpAdd)
	tempID, _ := s.AddMenuItem(ctx, espresso())
	if err := s.DeleteMenuItem(ctx, tempID); err != nil {
		t.Fatal(err)
	}
	release()
	s.Wait()

	if mem.Len(remote.CollMenuItems) != n {
		t.Fatalf("orphaned remote copy: %d items, want %d", mem.Len(remote.CollMenuItems), n)
	}
	if len(s.MenuItems()) != n {
		t.Fatal("local delete undone")
	}
}

func TestRefreshDuringPendingCreate(t *testing.T) {
	t.Run("menu item", func(t *testing.T) {
		s, f, mem := newConnected(t, nil)
		ctx := context.Background()
		n := mem.Len(remote.CollMenuItems)

		release := f.Hold(docstoretest.OpAdd)
		if _, err := s.AddMenuItem(ctx, espresso()); err != nil {
			t.Fatal(err)
		}
		s.Refresh(ctx)
		release()
		s.Wait()

		if got := mem.Len(remote.CollMenuItems); got != n+1 {
			t.Fatalf("remote items = %d, want %d", got, n+1)
		}
		found := 0
		for _, it := range s.MenuItems() {
			if it.Name == "Ristretto" {
				found++
				if IsTempID(it.ID) {
					t.Fatalf("cached under temp id %s", it.ID)
				}
			}
		}
		if found != 1 {
			t.Fatalf("cached copies = %d, want 1", found)
		}
	})

	t.Run("reservation", func(t *testing.T) {
		s, f, mem := newConnected(t, nil)
		ctx := context.Background()
		// Refresh only adopts a non-empty reservation list.
		if _, err := s.AddReservation(ctx, booking()); err != nil {
			t.Fatal(err)
		}
		s.Wait()

		release := f.Hold(docstoretest.OpAdd)
		req := booking()
		req.Name = "Bea Soto"
		if _, err := s.AddReservation(ctx, req); err != nil {
			t.Fatal(err)
		}
		s.Refresh(ctx)
		release()
		s.Wait()

		if got := mem.Len(remote.CollReservations); got != 2 {
			t.Fatalf("remote reservations = %d, want 2", got)
		}
		rs := s.Reservations()
		if len(rs) != 2 || rs[1].Name != "Bea Soto" || IsTempID(rs[1].ID) {
			t.Fatalf("reservations = %+v", rs)
		}
	})
}

func TestEditWhileCreatePending(t *testing.T) {
	s, f, mem := newConnected(t, nil)
	ctx := context.Background()

	release := f.Hold(docstoretest.OpAdd)
	tempID, _ := s.AddMenuItem(ctx, espresso())
	if err := s.UpdateMenuItem(ctx, tempID, models.MenuItemPatch{Name: ptr("Lungo")}); err != nil {
		t.Fatal(err)
	}
	if f.Calls(docstoretest.OpUpdate) != 0 {
		t.Fatal("update sent for a temporary id")
	}
	release()
	s.Wait()

	items := s.MenuItems()
	last := items[len(items)-1]
	if last.Name != "Lungo" || IsTempID(last.ID) {
		t.Fatalf("last = %+v", last)
	}
	doc, err := mem.Get(ctx, remote.CollMenuItems, last.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "Lungo" {
		t.Fatalf("remote name = %v", doc["name"])
	}
}

func TestUpdateAndDeleteReachRemote(t *testing.T) {
	s, _, mem := newConnected(t, nil)
	ctx := context.Background()
	first := s.MenuItems()[0]

	if err := s.ToggleAvailable(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if it, _ := s.MenuItem(first.ID); it.Available == first.Available {
		t.Fatal("toggle not applied locally")
	}
	s.Wait()
	doc, err := mem.Get(ctx, remote.CollMenuItems, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc["available"] != !first.Available {
		t.Fatalf("remote available = %v", doc["available"])
	}

	if err := s.DeleteMenuItem(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	s.Wait()
	if _, err := mem.Get(ctx, remote.CollMenuItems, first.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("remote get after delete = %v", err)
	}
}

func TestOptimisticKeepsFailedWrites(t *testing.T) {
	s, f, _ := newConnected(t, nil)
	ctx := context.Background()
	f.FailOn(docstoretest.OpUpdate, "", nil)
	f.FailOn(docstoretest.OpDelete, "", nil)
	items := s.MenuItems()

	if err := s.UpdateMenuItem(ctx, items[0].ID, models.MenuItemPatch{Price: ptr(99.0)}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMenuItem(ctx, items[1].ID); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	if it, _ := s.MenuItem(items[0].ID); it.Price != 99 {
		t.Fatal("failed update rolled back under optimistic policy")
	}
	if _, ok := s.MenuItem(items[1].ID); ok {
		t.Fatal("failed delete rolled back under optimistic policy")
	}
}

func TestRollbackUndoesFailedWrites(t *testing.T) {
	s, f, _ := newConnected(t, Rollback{})
	ctx := context.Background()
	f.FailOn(docstoretest.OpAdd, "", nil)
	f.FailOn(docstoretest.OpUpdate, "", nil)
	f.FailOn(docstoretest.OpDelete, "", nil)
	f.FailOn(docstoretest.OpSet, remote.CollConfig, nil)
	before := s.MenuItems()

	if _, err := s.AddMenuItem(ctx, espresso()); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateMenuItem(ctx, before[0].ID, models.MenuItemPatch{Price: ptr(99.0)}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMenuItem(ctx, before[1].ID); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateConfig(ctx, models.ConfigFields{"name": "Renamed"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCategory(ctx, "Brunch", "🥞"); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	after := s.MenuItems()
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("item %d = %+v, want %+v", i, after[i], before[i])
		}
	}
	if s.Config().Name != models.DefaultConfig().Name {
		t.Fatal("config change not rolled back")
	}
	if len(s.Categories()) != len(models.DefaultCategories()) {
		t.Fatal("category add not rolled back")
	}
}

func TestMutationValidation(t *testing.T) {
	s, _ := newOffline(t)
	ctx := context.Background()
	before := s.Version()

	bad := []models.MenuItem{
		{Name: "", Price: 1, Category: "cafe"},
		{Name: "Neg", Price: -1, Category: "cafe"},
		{Name: "Ghost", Price: 1, Category: "nope"},
	}
	for _, it := range bad {
		if _, err := s.AddMenuItem(ctx, it); !errors.Is(err, models.ErrValidation) {
			t.Errorf("add %+v err = %v", it, err)
		}
	}
	if err := s.UpdateMenuItem(ctx, "1", models.MenuItemPatch{Category: ptr("nope")}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("update to unknown category err = %v", err)
	}
	if err := s.UpdateMenuItem(ctx, "missing", models.MenuItemPatch{Price: ptr(1.0)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
	if err := s.DeleteMenuItem(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing err = %v", err)
	}
	if s.Version() != before {
		t.Fatal("rejected mutations changed the cache")
	}
	if len(s.MenuItems()) != len(models.DefaultMenuItems()) {
		t.Fatal("menu changed")
	}
}

func TestDeleteCategory(t *testing.T) {
	s, _ := newOffline(t)
	ctx := context.Background()

	if err := s.DeleteCategory(ctx, "cafe"); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("delete in-use err = %v", err)
	}
	if len(s.Categories()) != len(models.DefaultCategories()) {
		t.Fatal("in-use category removed")
	}

	c, err := s.AddCategory(ctx, "Cold Brew", "🧋")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "cold-brew" {
		t.Fatalf("id = %s", c.ID)
	}
	if _, err := s.AddCategory(ctx, "cold brew", "x"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := s.DeleteCategory(ctx, "cold-brew"); err != nil {
		t.Fatalf("delete unused: %v", err)
	}
	if err := s.DeleteCategory(ctx, "cold-brew"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}
	if len(s.Categories()) != len(models.DefaultCategories()) {
		t.Fatal("category list wrong after add+delete")
	}
}

func TestCategoriesReachRemote(t *testing.T) {
	s, _, mem := newConnected(t, nil)
	ctx := context.Background()
	if _, err := s.AddCategory(ctx, "Brunch", "🥞"); err != nil {
		t.Fatal(err)
	}
	s.Wait()
	got, err := remote.New(mem).GetCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(models.DefaultCategories())+1 || got[len(got)-1].ID != "brunch" {
		t.Fatalf("remote categories = %+v", got)
	}
}

func TestCredentialChangeThroughGate(t *testing.T) {
	s, _, mem := newConnected(t, nil)
	ctx := context.Background()
	g := gate.New(nil, func() string { return s.Config().Credential() })

	if !g.Authenticate(models.DefaultAdminPassword) {
		t.Fatal("default credential rejected")
	}
	g.Deauthenticate()

	if err := s.UpdateConfig(ctx, models.ConfigFields{"adminPassword": "new"}); err != nil {
		t.Fatal(err)
	}
	if g.Authenticate(models.DefaultAdminPassword) {
		t.Fatal("old credential accepted")
	}
	if !g.Authenticate("new") {
		t.Fatal("new credential rejected")
	}

	s.Wait()
	doc, err := mem.Get(ctx, remote.CollConfig, remote.DocBusiness)
	if err != nil {
		t.Fatal(err)
	}
	if doc["adminPassword"] != "new" {
		t.Fatalf("stored credential = %v", doc["adminPassword"])
	}
}

func TestSaveConfigKeepsCredentialWhenBlank(t *testing.T) {
	s, _ := newOffline(t)
	ctx := context.Background()
	if err := s.UpdateConfig(ctx, models.ConfigFields{"adminPassword": "pw"}); err != nil {
		t.Fatal(err)
	}
	cfg := s.Config()
	cfg.AdminPassword = ""
	cfg.Slogan = "new slogan"
	if err := s.SaveConfig(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if got := s.Config(); got.AdminPassword != "pw" || got.Slogan != "new slogan" {
		t.Fatalf("config = %+v", got)
	}
	cfg.Header.Style = "neon"
	if err := s.SaveConfig(ctx, cfg); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("bad style err = %v", err)
	}
}

func TestTempIDFormat(t *testing.T) {
	s, _ := newOffline(t)
	a, _ := s.AddMenuItem(context.Background(), espresso())
	b, _ := s.AddMenuItem(context.Background(), espresso())
	if a == b {
		t.Fatal("temp ids collide")
	}
	prefix := TempIDPrefix + "1773480600000_"
	if !strings.HasPrefix(a, prefix) {
		t.Fatalf("temp id = %s", a)
	}
}

func TestMenuAndStats(t *testing.T) {
	s := New(Options{})
	if got := len(s.Menu(MenuFilter{Category: "bakery"})); got != 2 {
		t.Fatalf("bakery = %d", got)
	}
	if got := len(s.Featured()); got != 3 {
		t.Fatalf("featured = %d", got)
	}
	if err := s.ToggleAvailable(context.Background(), "2"); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Featured()); got != 2 {
		t.Fatalf("featured after hiding one = %d", got)
	}

	st := s.Stats()
	if st.Items != 10 || st.Available != 9 || st.Featured != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if st.PerCategory["cafe"] != 3 || st.Categories != 5 {
		t.Fatalf("per category = %v", st.PerCategory)
	}
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]string{"": PolicyOptimistic, "Rollback": PolicyRollback, "optimistic": PolicyOptimistic} {
		p, err := PolicyByName(name)
		if err != nil || p.Name() != want {
			t.Errorf("PolicyByName(%q) = %v, %v", name, p, err)
		}
	}
	if _, err := PolicyByName("retry"); err == nil {
		t.Fatal("unknown policy accepted")
	}
}

func TestWaitContext(t *testing.T) {
	s, f, _ := newConnected(t, nil)
	release := f.Hold(docstoretest.OpAdd)
	s.AddMenuItem(context.Background(), espresso())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.WaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	release()
	if err := s.WaitContext(context.Background()); err != nil {
		t.Fatal(err)
	}
}

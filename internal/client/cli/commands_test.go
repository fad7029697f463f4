package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenumerique/drive-sub001/internal/client/driver"
	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/runtimecfg"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/logging"
)

// fakeDriver implements the calls the commands make; anything else panics
// through the nil embedded interface.
type fakeDriver struct {
	driver.Driver

	items    map[string]*models.Item
	children map[string][]*models.Item
	root     []*models.Item

	config       *models.ApiConfig
	me           *models.User
	meErr        error
	entitlements *models.Entitlements

	deleted     []string
	hardDeleted []string
	moved       []string
	movedTo     string

	created      *driver.CreateFileRequest
	createdBody  string
	reinitiated  *driver.ReinitiateUploadRequest
	finalized    []string
	relayPolls   int
	relayEvent   *models.SDKRelayEvent
	folders      []models.CreateFolderRequest
	invitations  []models.CreateInvitationRequest
	accesses     []*models.Access
	invitedItems []*models.Invitation
	searchFilter models.ItemFilters
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		items:        map[string]*models.Item{},
		children:     map[string][]*models.Item{},
		config:       &models.ApiConfig{Environment: "test", LanguageCode: "en-us"},
		entitlements: &models.Entitlements{CanUpload: models.Entitlement{Result: true}},
	}
}

func page(items ...*models.Item) *models.PaginatedItems {
	return &models.PaginatedItems{Items: items, Pagination: models.Pagination{CurrentPage: 1, TotalCount: len(items)}}
}

func (d *fakeDriver) GetConfig(context.Context) (*models.ApiConfig, error) { return d.config, nil }

func (d *fakeDriver) GetMe(context.Context) (*models.User, error) { return d.me, d.meErr }

func (d *fakeDriver) GetEntitlements(context.Context) (*models.Entitlements, error) {
	return d.entitlements, nil
}

func (d *fakeDriver) GetItem(_ context.Context, id string) (*models.Item, error) {
	it, ok := d.items[id]
	if !ok {
		return nil, &transport.APIError{Status: 404}
	}
	return it, nil
}

func (d *fakeDriver) GetItems(context.Context, models.ItemFilters) (*models.PaginatedItems, error) {
	return page(d.root...), nil
}

func (d *fakeDriver) GetChildren(_ context.Context, id string, _ models.ItemFilters) (*models.PaginatedItems, error) {
	return page(d.children[id]...), nil
}

func (d *fakeDriver) SearchItems(_ context.Context, f models.ItemFilters) (*models.PaginatedItems, error) {
	d.searchFilter = f
	return page(), nil
}

func (d *fakeDriver) GetBreadcrumb(_ context.Context, id string) ([]*models.Item, error) {
	return []*models.Item{{ID: "root", Title: "Projects"}, d.items[id]}, nil
}

func (d *fakeDriver) GetTree(_ context.Context, id string) (*models.Item, error) {
	return &models.Item{ID: id, Title: "Projects", Type: models.ItemTypeFolder, Children: []*models.Item{
		{ID: "c1", Title: "plan.pdf", Type: models.ItemTypeFile},
	}}, nil
}

func (d *fakeDriver) CreateFolder(_ context.Context, req models.CreateFolderRequest) (*models.Item, error) {
	d.folders = append(d.folders, req)
	return &models.Item{ID: "new-folder", Title: req.Title, Type: models.ItemTypeFolder}, nil
}

func (d *fakeDriver) DeleteItems(_ context.Context, ids []string) error {
	d.deleted = append(d.deleted, ids...)
	return nil
}

func (d *fakeDriver) HardDeleteItems(_ context.Context, ids []string) error {
	d.hardDeleted = append(d.hardDeleted, ids...)
	return nil
}

func (d *fakeDriver) MoveItems(_ context.Context, ids []string, target string) error {
	d.moved, d.movedTo = ids, target
	return nil
}

func (d *fakeDriver) CreateFile(_ context.Context, req driver.CreateFileRequest, onProgress driver.ProgressFunc) (*models.Item, error) {
	b, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	d.created, d.createdBody = &req, string(b)
	onProgress(0)
	onProgress(100)
	return &models.Item{ID: "file-1", Filename: req.Filename, Type: models.ItemTypeFile}, nil
}

func (d *fakeDriver) ReinitiateUpload(_ context.Context, req driver.ReinitiateUploadRequest, onProgress driver.ProgressFunc) (*models.Item, error) {
	d.reinitiated = &req
	onProgress(100)
	return &models.Item{ID: req.ItemID, Title: "again.txt"}, nil
}

func (d *fakeDriver) FinalizeUpload(_ context.Context, id string) (*models.Item, error) {
	d.finalized = append(d.finalized, id)
	return &models.Item{ID: id, Filename: "report.pdf", Type: models.ItemTypeFile}, nil
}

func (d *fakeDriver) GetSDKRelayEvent(context.Context, string) (*models.SDKRelayEvent, error) {
	d.relayPolls++
	if d.relayPolls < 2 || d.relayEvent == nil {
		return &models.SDKRelayEvent{}, nil
	}
	return d.relayEvent, nil
}

func (d *fakeDriver) GetItemAccesses(context.Context, string) ([]*models.Access, error) {
	return d.accesses, nil
}

func (d *fakeDriver) GetItemInvitations(context.Context, string) ([]*models.Invitation, error) {
	return d.invitedItems, nil
}

func (d *fakeDriver) CreateInvitation(_ context.Context, _ string, req models.CreateInvitationRequest) (*models.Invitation, error) {
	d.invitations = append(d.invitations, req)
	return &models.Invitation{Email: req.Email, Role: req.Role}, nil
}

func newTestApp(t *testing.T, d driver.Driver, input ...string) (*App, *bytes.Buffer) {
	t.Helper()
	capturePrintln(t)
	var out bytes.Buffer
	return &App{
		driver:  d,
		store:   runtimecfg.NewStore(),
		logger:  logging.Nop(),
		nav:     &terminalNavigator{out: &out, appOrigin: "http://app.test"},
		out:     &out,
		scanner: scannerOf(input...),
	}, &out
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCd_PushPopAndRoot(t *testing.T) {
	d := newFakeDriver()
	d.items["f1"] = &models.Item{ID: "f1", Title: "Projects", Type: models.ItemTypeFolder}
	d.items["f2"] = &models.Item{ID: "f2", Title: "2024", Type: models.ItemTypeFolder}
	d.items["doc"] = &models.Item{ID: "doc", Title: "notes.txt", Type: models.ItemTypeFile}
	a, _ := newTestApp(t, d)
	ctx := context.Background()

	require.NoError(t, a.Cd(ctx, []string{"f1"}))
	require.NoError(t, a.Cd(ctx, []string{"f2"}))
	assert.Equal(t, "/Projects/2024/", a.status())
	assert.Equal(t, "f2", a.currentFolderID())
	assert.Equal(t, "http://app.test/explorer/items/f2", a.nav.CurrentURL())

	err := a.Cd(ctx, []string{"doc"})
	assert.ErrorContains(t, err, "not a folder")
	assert.Equal(t, "f2", a.currentFolderID(), "unchanged on error")

	require.NoError(t, a.Cd(ctx, []string{".."}))
	assert.Equal(t, "f1", a.currentFolderID())

	require.NoError(t, a.Cd(ctx, []string{"/"}))
	assert.Equal(t, "/", a.status())
	assert.Equal(t, "http://app.test/explorer/items/my-files", a.nav.CurrentURL())

	var usage usageError
	assert.ErrorAs(t, a.Cd(ctx, nil), &usage)
}

func TestList_RootAndCurrentFolder(t *testing.T) {
	d := newFakeDriver()
	d.root = []*models.Item{{ID: "f1", Title: "Projects", Type: models.ItemTypeFolder}}
	d.children["f1"] = []*models.Item{{ID: "c1", Title: "plan.pdf", Type: models.ItemTypeFile, Size: 2048, UploadState: models.UploadStateAnalyzing}}
	d.items["f1"] = d.root[0]
	a, out := newTestApp(t, d)
	ctx := context.Background()

	require.NoError(t, a.List(ctx, nil))
	assert.Contains(t, out.String(), "Projects")

	out.Reset()
	require.NoError(t, a.Cd(ctx, []string{"f1"}))
	require.NoError(t, a.List(ctx, nil))
	assert.Contains(t, out.String(), "plan.pdf")
	assert.Contains(t, out.String(), "2.0 KiB")
	assert.Contains(t, out.String(), "analyzing")

	out.Reset()
	require.NoError(t, a.List(ctx, []string{"empty"}))
	assert.Equal(t, "No items.\n", out.String())
}

func TestMkdir_UsesCurrentFolder(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)
	a.path = []folder{{ID: "f1", Title: "Projects"}}

	require.NoError(t, a.Mkdir(context.Background(), []string{"Q3", "reports"}))
	require.Len(t, d.folders, 1)
	assert.Equal(t, models.CreateFolderRequest{ParentID: "f1", Title: "Q3 reports"}, d.folders[0])
	assert.Contains(t, out.String(), "Created folder Q3 reports (new-folder)")
}

func TestRemoveMoveAndPurge(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d, "n", "yes")
	ctx := context.Background()

	require.NoError(t, a.Remove(ctx, []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, d.deleted)

	require.NoError(t, a.Move(ctx, []string{"dst", "a"}))
	assert.Equal(t, []string{"a"}, d.moved)
	assert.Equal(t, "dst", d.movedTo)

	require.NoError(t, a.Purge(ctx, []string{"a"}))
	assert.Empty(t, d.hardDeleted, "declined")
	assert.Contains(t, out.String(), "Nothing deleted.")

	require.NoError(t, a.Purge(ctx, []string{"a"}))
	assert.Equal(t, []string{"a"}, d.hardDeleted)
}

func TestUpload_SendsFileFromCurrentFolder(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)
	a.path = []folder{{ID: "f1", Title: "Projects"}}
	path := writeTemp(t, "notes.txt", "hello drive")

	require.NoError(t, a.Upload(context.Background(), []string{path}))

	require.NotNil(t, d.created)
	assert.Equal(t, "f1", d.created.ParentID)
	assert.Equal(t, "notes.txt", d.created.Filename)
	assert.Equal(t, int64(len("hello drive")), d.created.Size)
	assert.Contains(t, d.created.MimeType, "text/plain")
	assert.Equal(t, "hello drive", d.createdBody)
	assert.Contains(t, out.String(), "notes.txt 100%")
	assert.Contains(t, out.String(), "Uploaded notes.txt (file-1)")
}

func TestUpload_SniffsMimeWithoutExtension(t *testing.T) {
	d := newFakeDriver()
	a, _ := newTestApp(t, d)
	path := writeTemp(t, "scan", "%PDF-1.7\n%binary")

	require.NoError(t, a.Upload(context.Background(), []string{path}))
	assert.Equal(t, "application/pdf", d.created.MimeType)
	assert.Equal(t, "%PDF-1.7\n%binary", d.createdBody, "content rewound after sniffing")
}

func TestUpload_NotEntitled(t *testing.T) {
	d := newFakeDriver()
	d.entitlements = &models.Entitlements{CanUpload: models.Entitlement{Result: false, Message: "quota exceeded"}}
	a, _ := newTestApp(t, d)
	path := writeTemp(t, "notes.txt", "x")

	err := a.Upload(context.Background(), []string{path})
	require.Error(t, err)
	assert.Equal(t, "Error: quota exceeded", describeError(err))
	assert.Nil(t, d.created)
}

func TestUpload_Errors(t *testing.T) {
	d := newFakeDriver()
	a, _ := newTestApp(t, d)

	var usage usageError
	assert.ErrorAs(t, a.Upload(context.Background(), nil), &usage)
	assert.ErrorIs(t, a.Upload(context.Background(), []string{t.TempDir()}), errIsDirectory)
	assert.ErrorIs(t, a.Upload(context.Background(), []string{"/nonexistent/file"}), os.ErrNotExist)
}

func TestReupload(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)
	path := writeTemp(t, "again.txt", "second try")

	require.NoError(t, a.Reupload(context.Background(), []string{"it-9", path}))
	require.NotNil(t, d.reinitiated)
	assert.Equal(t, "it-9", d.reinitiated.ItemID)
	assert.Equal(t, int64(len("second try")), d.reinitiated.Size)
	assert.Contains(t, out.String(), "Uploaded again.txt (it-9)")
}

func TestFinalize(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)

	var usage usageError
	assert.ErrorAs(t, a.Finalize(context.Background(), nil), &usage)

	require.NoError(t, a.Finalize(context.Background(), []string{"it-4"}))
	assert.Equal(t, []string{"it-4"}, d.finalized)
	assert.Nil(t, d.created, "no new placeholder")
	assert.Nil(t, d.reinitiated, "no second transfer")
	assert.Contains(t, out.String(), "(it-4)")
}

func TestPick_PrintsURLAndSelection(t *testing.T) {
	orig := pickerPollInterval
	pickerPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { pickerPollInterval = orig })

	data, err := json.Marshal(models.ItemsSelectedData{Items: []*models.Item{{ID: "p1", Title: "budget.xlsx", Type: models.ItemTypeFile}}})
	require.NoError(t, err)
	d := newFakeDriver()
	d.relayEvent = &models.SDKRelayEvent{Type: models.EventItemsSelected, Data: data}
	a, out := newTestApp(t, d)

	var usage usageError
	assert.ErrorAs(t, a.Pick(context.Background(), []string{"extra"}), &usage)

	require.NoError(t, a.Pick(context.Background(), nil))
	assert.Contains(t, out.String(), "http://app.test/sdk/explorer/?token=")
	assert.Contains(t, out.String(), "Picked 1 item(s):")
	assert.Contains(t, out.String(), "budget.xlsx")
	assert.Equal(t, 2, d.relayPolls)
}

func TestSearch_JoinsTerms(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)

	require.NoError(t, a.Search(context.Background(), []string{"budget", "2024"}))
	assert.Equal(t, "budget 2024", d.searchFilter.Title)
	assert.Equal(t, "No items.\n", out.String())
}

func TestTreeAndBreadcrumb(t *testing.T) {
	d := newFakeDriver()
	d.items["f2"] = &models.Item{ID: "f2", Title: "2024", Type: models.ItemTypeFolder}
	a, out := newTestApp(t, d)
	ctx := context.Background()

	var usage usageError
	assert.ErrorAs(t, a.Tree(ctx, nil), &usage)

	require.NoError(t, a.Breadcrumb(ctx, nil))
	assert.Equal(t, "/\n", out.String())

	out.Reset()
	require.NoError(t, a.Breadcrumb(ctx, []string{"f2"}))
	assert.Equal(t, "/Projects/2024\n", out.String())

	out.Reset()
	require.NoError(t, a.Tree(ctx, []string{"root"}))
	assert.Equal(t, "Projects/  (root)\n  plan.pdf  (c1)\n", out.String())
}

func TestWhoami(t *testing.T) {
	d := newFakeDriver()
	d.me = &models.User{Email: "ada@example.test", FullName: "Ada"}
	a, out := newTestApp(t, d)

	require.NoError(t, a.Whoami(context.Background(), nil))
	assert.Equal(t, "Ada <ada@example.test>\n", out.String())
	assert.Equal(t, "ada@example.test /", a.status())
}

func TestWhoami_UnauthorizedShowsResumeURL(t *testing.T) {
	d := newFakeDriver()
	d.meErr = &transport.APIError{Status: 401}
	a, out := newTestApp(t, d)
	a.nav.SaveRedirectAfterLogin("http://app.test/explorer/items/f1")

	err := a.Whoami(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "", describeError(err))
	assert.Contains(t, out.String(), "resume at http://app.test/explorer/items/f1")
}

func TestConfig_PublishesAndPrintsBounds(t *testing.T) {
	d := newFakeDriver()
	d.config.OperationTimeBounds = map[string]any{
		"upload_put": map[string]any{"still_working_ms": 1000.0, "fail_ms": 2000.0},
	}
	a, out := newTestApp(t, d)

	require.NoError(t, a.Config(context.Background(), nil))
	assert.Same(t, d.config, a.store.Get())
	assert.Contains(t, out.String(), "Environment: test")
	assert.Contains(t, out.String(), "upload_put")
	assert.Equal(t, time.Second, a.store.Bounds("upload_put").StillWorking)
}

func TestSharesAndInvite(t *testing.T) {
	d := newFakeDriver()
	a, out := newTestApp(t, d)
	ctx := context.Background()

	require.NoError(t, a.Shares(ctx, []string{"it"}))
	assert.Equal(t, "Not shared.\n", out.String())

	d.accesses = []*models.Access{{Role: models.RoleOwner, User: &models.User{Email: "ada@example.test"}}}
	d.invitedItems = []*models.Invitation{{Email: "bob@example.test", Role: models.RoleReader}}
	out.Reset()
	require.NoError(t, a.Shares(ctx, []string{"it"}))
	assert.Contains(t, out.String(), "ada@example.test")
	assert.Contains(t, out.String(), "invited")

	var usage usageError
	assert.ErrorAs(t, a.Invite(ctx, []string{"it", "c@example.test", "god"}), &usage)

	require.NoError(t, a.Invite(ctx, []string{"it", "c@example.test", "editor"}))
	require.Len(t, d.invitations, 1)
	assert.Equal(t, models.RoleEditor, d.invitations[0].Role)
}

func TestLoadConfig_ReportsSlowLoad(t *testing.T) {
	d := &slowConfigDriver{fakeDriver: newFakeDriver(), delay: 100 * time.Millisecond}
	a, _ := newTestApp(t, d)
	a.store.Set(&models.ApiConfig{OperationTimeBounds: map[string]any{
		"config_load": map[string]any{"still_working_ms": 10.0, "fail_ms": 1000.0},
	}})

	notices := make(chan string, 4)
	printlnFn = func(a ...any) (int, error) {
		notices <- fmt.Sprint(a...)
		return 0, nil
	}

	require.NoError(t, a.LoadConfig(context.Background()))
	select {
	case msg := <-notices:
		assert.Equal(t, "Still loading the configuration...", msg)
	case <-time.After(time.Second):
		t.Fatal("no still-working notice")
	}
	assert.Equal(t, "test", a.store.Get().Environment)
}

type slowConfigDriver struct {
	*fakeDriver
	delay time.Duration
}

func (d *slowConfigDriver) GetConfig(ctx context.Context) (*models.ApiConfig, error) {
	time.Sleep(d.delay)
	return d.fakeDriver.GetConfig(ctx)
}

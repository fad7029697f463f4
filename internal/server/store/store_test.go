package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

// newTestStore returns a store with sequential ids and a clock advancing one
// second per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	var seq int
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	return New(models.User{ID: "me", Email: "me@example.test", FullName: "Me"},
		WithIDs(func() string { seq++; return fmt.Sprintf("id%d", seq) }),
		WithClock(func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }),
	)
}

func mustCreate(t *testing.T, s *Store, parent string, typ models.ItemType, title string) *models.Item {
	t.Helper()
	it, err := s.CreateItem(parent, typ, title, "")
	require.NoError(t, err)
	return it
}

func ids(items []*models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestCreateItem(t *testing.T) {
	s := newTestStore(t)

	root := mustCreate(t, s, "", models.ItemTypeFolder, "Projects")
	assert.True(t, root.MainWorkspace)
	assert.Equal(t, 1, root.Depth)
	assert.Equal(t, "me@example.test", root.Creator.Email)

	file := mustCreate(t, s, root.ID, models.ItemTypeFile, "plan.pdf")
	assert.Equal(t, models.UploadStatePending, file.UploadState)
	assert.Equal(t, "plan.pdf", file.Filename)
	assert.Equal(t, 2, file.Depth)
	assert.Equal(t, root.ID+"."+file.ID, file.Path)

	parent, err := s.Item(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, parent.NumChild)

	_, err = s.CreateItem(file.ID, models.ItemTypeFolder, "x", "")
	assert.ErrorIs(t, err, shared.ErrorNotAFolder)

	_, err = s.CreateItem("missing", models.ItemTypeFolder, "x", "")
	assert.ErrorIs(t, err, shared.ErrorNotFound)

	_, err = s.CreateItem("", models.ItemTypeFolder, "  ", "")
	assert.ErrorIs(t, err, shared.ErrorValidation)

	_, err = s.CreateItem("", "link", "x", "")
	assert.ErrorIs(t, err, shared.ErrorValidation)
}

func TestChildrenOrderingAndFilters(t *testing.T) {
	s := newTestStore(t)
	root := mustCreate(t, s, "", models.ItemTypeFolder, "Root")
	a := mustCreate(t, s, root.ID, models.ItemTypeFile, "a.txt")
	b := mustCreate(t, s, root.ID, models.ItemTypeFolder, "Beta")
	c := mustCreate(t, s, root.ID, models.ItemTypeFile, "c.txt")

	got, err := s.Children(root.ID, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(got), "folders first, then newest")

	got, err = s.Children(root.ID, ListFilter{Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(got))

	got, err = s.Children(root.ID, ListFilter{Type: models.ItemTypeFile, Title: "C."})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids(got))

	top, err := s.Children("", ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{root.ID}, ids(top))

	_, err = s.Children(a.ID, ListFilter{})
	assert.ErrorIs(t, err, shared.ErrorNotAFolder)
}

func TestTrashLifecycle(t *testing.T) {
	s := newTestStore(t)
	root := mustCreate(t, s, "", models.ItemTypeFolder, "Root")
	sub := mustCreate(t, s, root.ID, models.ItemTypeFolder, "Sub")
	leaf := mustCreate(t, s, sub.ID, models.ItemTypeFile, "leaf.txt")

	require.NoError(t, s.SoftDelete(sub.ID))

	_, err := s.Item(leaf.ID)
	assert.ErrorIs(t, err, shared.ErrorNotFound, "hidden by a deleted ancestor")
	assert.Equal(t, []string{sub.ID}, ids(s.Trash(ListFilter{})), "only directly deleted items")
	assert.NotContains(t, ids(s.Search(ListFilter{})), leaf.ID)

	assert.ErrorIs(t, s.SoftDelete(sub.ID), shared.ErrorNotFound, "already trashed")
	assert.ErrorIs(t, s.HardDelete(root.ID), shared.ErrorValidation, "not trashed")

	require.NoError(t, s.Restore(sub.ID))
	_, err = s.Item(leaf.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Restore(sub.ID), shared.ErrorNotFound)

	require.NoError(t, s.SoftDelete(sub.ID))
	require.NoError(t, s.HardDelete(sub.ID))
	assert.Empty(t, s.Trash(ListFilter{}))
	assert.Equal(t, []string{root.ID}, ids(s.Search(ListFilter{})))

	r, err := s.Item(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumChild)
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "", models.ItemTypeFolder, "A")
	b := mustCreate(t, s, "", models.ItemTypeFolder, "B")
	sub := mustCreate(t, s, a.ID, models.ItemTypeFolder, "Sub")
	leaf := mustCreate(t, s, sub.ID, models.ItemTypeFile, "leaf.txt")

	require.NoError(t, s.Move(sub.ID, b.ID))

	moved, err := s.Item(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID+"."+sub.ID+"."+leaf.ID, moved.Path)
	assert.Equal(t, 3, moved.Depth)

	crumbs, err := s.Breadcrumb(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, sub.ID, leaf.ID}, ids(crumbs))

	assert.ErrorIs(t, s.Move(b.ID, sub.ID), shared.ErrorMoveIntoItself)
	assert.ErrorIs(t, s.Move(b.ID, b.ID), shared.ErrorMoveIntoItself)
	assert.ErrorIs(t, s.Move(a.ID, leaf.ID), shared.ErrorNotAFolder)
	assert.ErrorIs(t, s.Move("missing", a.ID), shared.ErrorNotFound)

	oldParent, err := s.Item(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, oldParent.NumChild)
}

func TestTree(t *testing.T) {
	s := newTestStore(t)
	root := mustCreate(t, s, "", models.ItemTypeFolder, "Root")
	sub := mustCreate(t, s, root.ID, models.ItemTypeFolder, "Sub")
	mustCreate(t, s, sub.ID, models.ItemTypeFile, "leaf.txt")
	gone := mustCreate(t, s, root.ID, models.ItemTypeFile, "gone.txt")
	require.NoError(t, s.SoftDelete(gone.ID))

	tree, err := s.Tree(root.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Sub", tree.Children[0].Title)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "leaf.txt", tree.Children[0].Children[0].Title)
	assert.Nil(t, tree.Children[0].Children[0].Children, "files have no children list")
}

func TestFavoritesAndRecent(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "", models.ItemTypeFolder, "A")
	b := mustCreate(t, s, "", models.ItemTypeFolder, "B")

	require.NoError(t, s.SetFavorite(a.ID, true))
	fav := s.Favorites(ListFilter{})
	require.Len(t, fav, 1)
	assert.True(t, fav[0].IsFavorite)

	title := "A2"
	_, err := s.UpdateItem(a.ID, models.UpdateItemRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(s.Recent(ListFilter{})))

	require.NoError(t, s.SetFavorite(a.ID, false))
	assert.Empty(t, s.Favorites(ListFilter{}))
	assert.ErrorIs(t, s.SetFavorite("missing", true), shared.ErrorNotFound)

	empty := " "
	_, err = s.UpdateItem(a.ID, models.UpdateItemRequest{Title: &empty})
	assert.ErrorIs(t, err, shared.ErrorValidation)
}

func TestUploadLifecycle(t *testing.T) {
	s := newTestStore(t)
	f := mustCreate(t, s, "", models.ItemTypeFile, "a.txt")
	folder := mustCreate(t, s, "", models.ItemTypeFolder, "F")

	_, err := s.PendingKey(f.ID)
	assert.ErrorIs(t, err, shared.ErrorNoPolicy)

	_, err = s.BeginUpload(folder.ID, "k")
	assert.ErrorIs(t, err, shared.ErrorValidation)

	_, err = s.BeginUpload(f.ID, "item/"+f.ID+"/a.txt")
	require.NoError(t, err)
	key, err := s.PendingKey(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "item/"+f.ID+"/a.txt", key)

	done, err := s.EndUpload(f.ID, 12, "text/plain", "http://media/a.txt")
	require.NoError(t, err)
	assert.Equal(t, models.UploadStateReady, done.UploadState)
	assert.Equal(t, int64(12), done.Size)

	_, err = s.EndUpload(f.ID, 12, "text/plain", "")
	assert.ErrorIs(t, err, shared.ErrorNoPolicy, "already ended")
}

func TestReturnedItemsAreCopies(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "", models.ItemTypeFolder, "A")
	a.Title = "mutated"
	a.Creator.Email = "mutated"

	got, err := s.Item(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "me@example.test", got.Creator.Email)
}

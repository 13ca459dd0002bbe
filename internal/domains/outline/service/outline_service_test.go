package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared"
)

type fakeSnapshotRepo struct {
	snapshots map[uuid.UUID]*outline.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[uuid.UUID]*outline.Snapshot)}
}

func (f *fakeSnapshotRepo) Create(ctx context.Context, s *outline.Snapshot) error {
	copied := *s
	f.snapshots[s.ID] = &copied
	return nil
}

func (f *fakeSnapshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*outline.Snapshot, error) {
	s, ok := f.snapshots[id]
	if !ok {
		return nil, outline.ErrOutlineNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSnapshotRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]outline.Snapshot, error) {
	var out []outline.Snapshot
	for _, s := range f.snapshots {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) Update(ctx context.Context, s *outline.Snapshot) error {
	if _, ok := f.snapshots[s.ID]; !ok {
		return outline.ErrOutlineNotFound
	}
	copied := *s
	f.snapshots[s.ID] = &copied
	return nil
}

func (f *fakeSnapshotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.snapshots, id)
	return nil
}

func testOutline() outline.BookOutline {
	return outline.BookOutline{
		Title:          "The Salt Road",
		Author:         "A. Writer",
		TotalWordCount: 60000,
		Chapters: []outline.ChapterOutline{
			{Number: 9, Title: "Departure"},
			{Number: 2, Title: "Crossing"},
		},
	}
}

func TestSaveSnapshotRenumbers(t *testing.T) {
	repo := newFakeSnapshotRepo()
	svc := NewOutlineService(repo)
	actor := shared.Actor{ID: uuid.NewString()}

	snap, err := svc.SaveSnapshot(context.Background(), actor, outline.SaveSnapshotRequest{
		Name:    "draft 1",
		Outline: testOutline(),
	})
	require.NoError(t, err)

	// Client numbering is not trusted.
	assert.Equal(t, 1, snap.Outline.Chapters[0].Number)
	assert.Equal(t, 2, snap.Outline.Chapters[1].Number)

	stored, err := svc.GetSnapshot(context.Background(), actor, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Outline, stored.Outline)
}

func TestSaveSnapshotValidation(t *testing.T) {
	svc := NewOutlineService(newFakeSnapshotRepo())
	actor := shared.Actor{ID: uuid.NewString()}

	_, err := svc.SaveSnapshot(context.Background(), actor, outline.SaveSnapshotRequest{
		Name: "no chapters",
		Outline: outline.BookOutline{
			Title: "Empty",
		},
	})
	assert.Error(t, err)

	_, err = svc.SaveSnapshot(context.Background(), actor, outline.SaveSnapshotRequest{
		Outline: testOutline(),
	})
	assert.Error(t, err, "name is required")
}

func TestSnapshotOwnership(t *testing.T) {
	repo := newFakeSnapshotRepo()
	svc := NewOutlineService(repo)
	owner := shared.Actor{ID: uuid.NewString()}
	stranger := shared.Actor{ID: uuid.NewString()}

	snap, err := svc.SaveSnapshot(context.Background(), owner, outline.SaveSnapshotRequest{
		Name:    "draft",
		Outline: testOutline(),
	})
	require.NoError(t, err)

	_, err = svc.GetSnapshot(context.Background(), stranger, snap.ID)
	assert.ErrorIs(t, err, outline.ErrNotOwner)

	err = svc.DeleteSnapshot(context.Background(), stranger, snap.ID)
	assert.ErrorIs(t, err, outline.ErrNotOwner)

	// The owner can still read it.
	_, err = svc.GetSnapshot(context.Background(), owner, snap.ID)
	assert.NoError(t, err)
}

func TestMutateKeepsNumberingContiguous(t *testing.T) {
	repo := newFakeSnapshotRepo()
	svc := NewOutlineService(repo)
	actor := shared.Actor{ID: uuid.NewString()}

	snap, err := svc.SaveSnapshot(context.Background(), actor, outline.SaveSnapshotRequest{
		Name:    "draft",
		Outline: testOutline(),
	})
	require.NoError(t, err)

	snap, err = svc.Mutate(context.Background(), actor, snap.ID, outline.MutateRequest{
		Op:    outline.OpAddChapter,
		Title: "Arrival",
	})
	require.NoError(t, err)
	require.Len(t, snap.Outline.Chapters, 3)
	assert.Equal(t, 3, snap.Outline.Chapters[2].Number)

	snap, err = svc.Mutate(context.Background(), actor, snap.ID, outline.MutateRequest{
		Op:    outline.OpDeleteChapter,
		Index: 0,
	})
	require.NoError(t, err)
	require.Len(t, snap.Outline.Chapters, 2)
	assert.Equal(t, 1, snap.Outline.Chapters[0].Number)
	assert.Equal(t, "Crossing", snap.Outline.Chapters[0].Title)

	// The mutation is persisted, not just returned.
	stored, err := svc.GetSnapshot(context.Background(), actor, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Outline, stored.Outline)
}

func TestMutateRejectsBadIndex(t *testing.T) {
	repo := newFakeSnapshotRepo()
	svc := NewOutlineService(repo)
	actor := shared.Actor{ID: uuid.NewString()}

	snap, err := svc.SaveSnapshot(context.Background(), actor, outline.SaveSnapshotRequest{
		Name:    "draft",
		Outline: testOutline(),
	})
	require.NoError(t, err)

	_, err = svc.Mutate(context.Background(), actor, snap.ID, outline.MutateRequest{
		Op:    outline.OpDeleteChapter,
		Index: 10,
	})
	assert.ErrorIs(t, err, outline.ErrChapterIndexOutOfRange)

	// The failed mutation left the snapshot untouched.
	stored, err := svc.GetSnapshot(context.Background(), actor, snap.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Outline.Chapters, 2)
}

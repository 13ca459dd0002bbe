package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared"
)

// OutlineService implements outline.Service.
type OutlineService struct {
	repo outline.Repository
}

func NewOutlineService(repo outline.Repository) outline.Service {
	return &OutlineService{repo: repo}
}

func (s *OutlineService) SaveSnapshot(ctx context.Context, actor shared.Actor, req outline.SaveSnapshotRequest) (*outline.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	snapshot := &outline.Snapshot{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    req.Name,
		Outline: req.Outline,
	}
	// Stored outlines always carry contiguous numbering, whatever the
	// client sent.
	snapshot.Outline.Renumber()

	if err := s.repo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	log.Printf("[Outline] Snapshot saved: %s (%d chapters)", snapshot.ID, len(snapshot.Outline.Chapters))
	return snapshot, nil
}

func (s *OutlineService) ListSnapshots(ctx context.Context, actor shared.Actor) ([]outline.SnapshotSummary, error) {
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	snapshots, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]outline.SnapshotSummary, len(snapshots))
	for i, snap := range snapshots {
		summaries[i] = outline.SnapshotSummary{
			ID:           snap.ID.String(),
			Name:         snap.Name,
			Title:        snap.Outline.Title,
			ChapterCount: len(snap.Outline.Chapters),
			CreatedAt:    snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return summaries, nil
}

func (s *OutlineService) GetSnapshot(ctx context.Context, actor shared.Actor, id uuid.UUID) (*outline.Snapshot, error) {
	return s.ownedSnapshot(ctx, actor, id)
}

func (s *OutlineService) DeleteSnapshot(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if _, err := s.ownedSnapshot(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *OutlineService) Mutate(ctx context.Context, actor shared.Actor, id uuid.UUID, req outline.MutateRequest) (*outline.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.ownedSnapshot(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	o := &snapshot.Outline
	switch req.Op {
	case outline.OpAddChapter:
		o.AddChapter(req.Title, req.Summary)
	case outline.OpDeleteChapter:
		err = o.DeleteChapter(req.Index)
	case outline.OpMoveChapter:
		err = o.MoveChapter(req.Index, req.Direction)
	case outline.OpUpdateChapter:
		err = o.UpdateChapter(req.Index, req.Title, req.Summary, req.WordCount)
	case outline.OpAddTheme:
		o.AddTheme(req.Theme)
	case outline.OpRemoveTheme:
		o.RemoveTheme(req.Theme)
	case outline.OpAddCharacter:
		o.AddCharacter(req.Character)
	case outline.OpRemoveCharacter:
		o.RemoveCharacter(req.Name)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *OutlineService) ownedSnapshot(ctx context.Context, actor shared.Actor, id uuid.UUID) (*outline.Snapshot, error) {
	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot.UserID.String() != actor.ID {
		return nil, outline.ErrNotOwner
	}
	return snapshot, nil
}

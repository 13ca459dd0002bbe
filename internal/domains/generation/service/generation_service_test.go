package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
)

type fakeBookGateway struct {
	access map[uuid.UUID]*generation.BookAccess
}

func (f *fakeBookGateway) CreateGeneratedBook(ctx context.Context, userID uuid.UUID, input generation.OutlineInput) (uuid.UUID, []uuid.UUID, error) {
	return uuid.New(), nil, nil
}

func (f *fakeBookGateway) GetBookAccess(ctx context.Context, bookID uuid.UUID) (*generation.BookAccess, error) {
	a, ok := f.access[bookID]
	if !ok {
		return nil, generation.ErrBookNotFound
	}
	return a, nil
}

func TestStartExportAuthorization(t *testing.T) {
	ownerID := uuid.New()
	strangerID := uuid.New()
	privateBook := uuid.New()
	showcasedBook := uuid.New()

	books := &fakeBookGateway{access: map[uuid.UUID]*generation.BookAccess{
		privateBook:   {OwnerID: ownerID},
		showcasedBook: {OwnerID: ownerID, Showcased: true},
	}}

	proOwner := shared.Actor{ID: ownerID.String(), Tier: "pro"}
	freeOwner := shared.Actor{ID: ownerID.String(), Tier: "free"}
	proStranger := shared.Actor{ID: strangerID.String(), Tier: "pro"}
	freeStranger := shared.Actor{ID: strangerID.String(), Tier: "free"}
	demoActor := shared.Actor{ID: strangerID.String(), Tier: "free", IsDemo: true}

	tests := []struct {
		name    string
		actor   shared.Actor
		bookID  uuid.UUID
		wantErr error
	}{
		{"pro owner exports own book", proOwner, privateBook, nil},
		{"free owner lacks the tier", freeOwner, privateBook, generation.ErrJobAccessDenied},
		{"pro stranger cannot reach a private book", proStranger, privateBook, generation.ErrJobAccessDenied},
		{"free stranger denied", freeStranger, privateBook, generation.ErrJobAccessDenied},
		{"pro stranger exports a showcased book", proStranger, showcasedBook, nil},
		{"demo actor exports own book", demoActor, showcasedBook, nil},
		{"unknown book", proOwner, uuid.New(), generation.ErrBookNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeJobRepo()
			enq := &fakeEnqueuer{}
			svc := NewGenerationService(repo, nil, books, nil, enq)

			job, err := svc.StartExport(context.Background(), tt.actor, tt.bookID, generation.KindVideo)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, job)
				assert.Empty(t, repo.jobs, "no job row on a denied export")
				assert.Empty(t, enq.tasks, "nothing enqueued on a denied export")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, job)
			assert.Equal(t, generation.StatusPending, job.Status)
			require.Len(t, enq.tasks, 1)
			assert.Equal(t, shared.TypeExportVideo, enq.tasks[0].Type())
		})
	}
}

func TestStartExportRejectsUnknownKind(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewGenerationService(repo, nil, &fakeBookGateway{}, nil, &fakeEnqueuer{})

	_, err := svc.StartExport(context.Background(), shared.Actor{ID: uuid.NewString(), Tier: "pro"},
		uuid.New(), generation.KindChapters)
	require.ErrorIs(t, err, generation.ErrInvalidJobKind)
}

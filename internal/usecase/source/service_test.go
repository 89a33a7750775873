package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	srcUC "scrapeengine/internal/usecase/source"
)

// stubRepo is a minimal in-memory repository.SourceRepository.
type stubRepo struct {
	data map[uuid.UUID]*entity.Source
	err  error
}

func newStub() *stubRepo {
	return &stubRepo{data: map[uuid.UUID]*entity.Source{}}
}

func (s *stubRepo) GetByName(_ context.Context, name string) (*entity.Source, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, v := range s.data {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Source, error) {
	if s.err != nil {
		return nil, s.err
	}
	src, ok := s.data[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return src, nil
}

func (s *stubRepo) List(_ context.Context, page, pageSize int) ([]entity.Source, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]entity.Source, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(_ context.Context, src *entity.Source) error {
	if s.err != nil {
		return s.err
	}
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	s.data[src.ID] = src
	return nil
}

func (s *stubRepo) Update(_ context.Context, src *entity.Source) error {
	if s.err != nil {
		return s.err
	}
	s.data[src.ID] = src
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	delete(s.data, id)
	return nil
}

func TestService_Create_validation(t *testing.T) {
	svc := srcUC.New(newStub(), nil)

	if _, err := svc.Create(context.Background(), srcUC.CreateInput{}); err == nil {
		t.Fatalf("want validation error, got nil")
	}
}

func TestService_Create_success(t *testing.T) {
	stub := newStub()
	svc := srcUC.New(stub, nil)

	in := srcUC.CreateInput{Name: "Qiita", Domain: "qiita.com", RSSURL: "https://qiita.com/feed"}
	src, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if src.ID == uuid.Nil {
		t.Fatalf("want a generated ID")
	}
	if len(stub.data) != 1 {
		t.Fatalf("want 1 source, got %d", len(stub.data))
	}
}

func TestService_Create_invalidRSSURL(t *testing.T) {
	svc := srcUC.New(newStub(), nil)

	_, err := svc.Create(context.Background(), srcUC.CreateInput{
		Name: "Test", Domain: "example.com", RSSURL: "not-a-url",
	})
	if err == nil {
		t.Fatalf("want validation error, got nil")
	}
}

func TestService_Update_notFound(t *testing.T) {
	svc := srcUC.New(newStub(), nil)

	if _, err := svc.Update(context.Background(), srcUC.UpdateInput{ID: uuid.New()}); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestService_Update_fieldUpdates(t *testing.T) {
	stub := newStub()
	id := uuid.New()
	stub.data[id] = &entity.Source{ID: id, Name: "Qiita", Domain: "qiita.com", RSSURL: "https://qiita.com/feed"}
	svc := srcUC.New(stub, nil)

	got, err := svc.Update(context.Background(), srcUC.UpdateInput{ID: id, Name: "Qiita Go"})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if got.Name != "Qiita Go" {
		t.Fatalf("Name not updated: %#v", got)
	}
	if got.RSSURL != "https://qiita.com/feed" {
		t.Fatalf("RSSURL should be unchanged, got %q", got.RSSURL)
	}
}

func TestService_Delete_success(t *testing.T) {
	stub := newStub()
	id := uuid.New()
	stub.data[id] = &entity.Source{ID: id, Name: "Test", Domain: "example.com", RSSURL: "https://example.com/feed"}
	svc := srcUC.New(stub, nil)

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if _, exists := stub.data[id]; exists {
		t.Fatalf("source still exists after delete")
	}
}

func TestService_Delete_repositoryError(t *testing.T) {
	stub := newStub()
	stub.err = errors.New("delete failed")
	svc := srcUC.New(stub, nil)

	if err := svc.Delete(context.Background(), uuid.New()); err == nil {
		t.Fatalf("want error, got nil")
	}
}

func TestService_List(t *testing.T) {
	stub := newStub()
	stub.data[uuid.New()] = &entity.Source{Name: "Qiita"}
	stub.data[uuid.New()] = &entity.Source{Name: "Zenn"}
	svc := srcUC.New(stub, nil)

	sources, total, err := svc.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if total != 2 || len(sources) != 2 {
		t.Fatalf("want 2 sources, got %d (total=%d)", len(sources), total)
	}
}

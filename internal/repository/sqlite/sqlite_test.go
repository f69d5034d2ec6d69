package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"netlens/internal/domain"
	"netlens/internal/repository"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func routedTopology() *domain.Topology {
	a := domain.NewNode("A", 150, 200, "B")
	a.Routes = domain.RoutingTable{
		"A": domain.Reachable("", 0),
		"B": domain.Reachable("B", 2.5),
		"C": domain.Unreachable(),
	}
	return domain.NewTopology("custom", "Routed", "with routing tables",
		[]domain.Node{a, domain.NewNode("B", 300, 200, "A")},
		[]domain.Link{domain.NewLink("A", "B", 2.5)})
}

func TestSaveAndGetTopology(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("library topology round trips", func(t *testing.T) {
		for _, topo := range domain.Library() {
			_, err := repo.SaveTopology(ctx, topo.Key, topo)
			assertNoError(t, err)

			got, err := repo.GetTopology(ctx, topo.Key)
			assertNoError(t, err)
			assertEqual(t, domain.Digest(topo), domain.Digest(got))
			assertEqual(t, topo.NodeIDs(), got.NodeIDs())
			assertEqual(t, topo.Links, got.Links)
		}
	})

	t.Run("routing tables survive", func(t *testing.T) {
		topo := routedTopology()
		summary, err := repo.SaveTopology(ctx, "routed", topo)
		assertNoError(t, err)
		assertEqual(t, 2, summary.NodeCount)
		assertEqual(t, "custom", summary.Key)

		got, err := repo.GetTopology(ctx, "routed")
		assertNoError(t, err)

		a, _ := got.Get("A")
		if r, _ := a.Route("C"); r.IsReachable() {
			t.Error("expected C to stay unreachable")
		}
		if !a.IsSelfRoute("A") {
			t.Error("expected self route for A")
		}
		assertEqual(t, domain.Digest(topo), domain.Digest(got))
		assertEqual(t, "Routed", got.Name)
	})
}

func TestSaveTopologyReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	linear, _ := domain.LibraryTopology(domain.TopologyLinear)
	star, _ := domain.LibraryTopology(domain.TopologyStar)

	_, err := repo.SaveTopology(ctx, "mine", linear)
	assertNoError(t, err)
	_, err = repo.SaveTopology(ctx, "mine", star)
	assertNoError(t, err)

	got, err := repo.GetTopology(ctx, "mine")
	assertNoError(t, err)
	assertEqual(t, star.NodeIDs(), got.NodeIDs())
	assertEqual(t, len(star.Links), len(got.Links))

	list, err := repo.ListTopologies(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(list))
}

func TestSaveTopologyRequiresName(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.SaveTopology(context.Background(), "  ", domain.Empty()); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestListTopologiesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, key := range []string{domain.TopologyLinear, domain.TopologyMesh} {
		at := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return at }
		topo, _ := domain.LibraryTopology(key)
		_, err := repo.SaveTopology(ctx, key, topo)
		assertNoError(t, err)
	}

	list, err := repo.ListTopologies(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(list))
	assertEqual(t, domain.TopologyMesh, list[0].Name)
	assertEqual(t, base.Add(time.Minute), list[0].SavedAt)
	assertEqual(t, 8, list[0].LinkCount)
}

func TestGetAndDeleteMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetTopology(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTopology(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	topo, _ := domain.LibraryTopology(domain.TopologyTree)
	_, err := repo.SaveTopology(ctx, "tree", topo)
	assertNoError(t, err)
	assertNoError(t, repo.DeleteTopology(ctx, "tree"))

	var nodes, links int
	assertNoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM saved_nodes`).Scan(&nodes))
	assertNoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM saved_links`).Scan(&links))
	assertEqual(t, 0, nodes)
	assertEqual(t, 0, links)
}

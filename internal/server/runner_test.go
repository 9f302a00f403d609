package server

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/grabarr/internal/download"
	"github.com/vmunix/grabarr/internal/download/mocks"
	"github.com/vmunix/grabarr/internal/migrations"
)

type nopLibrary struct{}

func (nopLibrary) EnsureRequested(string, int) error { return nil }

type nopImporter struct{}

func (nopImporter) Import(context.Context, string, string, int, string) error { return nil }

type nopBlocklist struct{}

func (nopBlocklist) Add(string, int, string, string) error { return nil }

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return db
}

func TestPoller_PollsAndStopsCleanly(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Name().Return("sab").AnyTimes()
	mockClient.EXPECT().Queue(gomock.Any()).Return([]download.QueueItem{}, nil).MinTimes(1)

	tracker := download.NewTracker(setupTestDB(t))
	manager := download.NewManager([]download.Client{mockClient}, tracker, nopLibrary{}, nil)
	reconciler := download.NewReconciler(tracker, nopImporter{}, nopBlocklist{}, nil)
	poller := NewPoller(manager, reconciler, 10*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPoller_ClientFailureDoesNotAbort(t *testing.T) {
	ctrl := gomock.NewController(t)

	failing := mocks.NewMockClient(ctrl)
	failing.EXPECT().Name().Return("down").AnyTimes()
	failing.EXPECT().Queue(gomock.Any()).Return(nil, download.ErrClientUnavailable).AnyTimes()

	healthy := mocks.NewMockClient(ctrl)
	healthy.EXPECT().Name().Return("up").AnyTimes()
	healthy.EXPECT().Queue(gomock.Any()).Return([]download.QueueItem{}, nil).MinTimes(1)

	tracker := download.NewTracker(setupTestDB(t))
	manager := download.NewManager([]download.Client{failing, healthy}, tracker, nopLibrary{}, nil)
	reconciler := download.NewReconciler(tracker, nopImporter{}, nopBlocklist{}, nil)
	poller := NewPoller(manager, reconciler, time.Hour, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	// The initial poll visits both clients despite the failing one.
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestPoller_RefreshNow(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Name().Return("sab").AnyTimes()
	// Initial poll plus at least one manual refresh.
	mockClient.EXPECT().Queue(gomock.Any()).Return([]download.QueueItem{}, nil).MinTimes(2)

	tracker := download.NewTracker(setupTestDB(t))
	manager := download.NewManager([]download.Client{mockClient}, tracker, nopLibrary{}, nil)
	reconciler := download.NewReconciler(tracker, nopImporter{}, nopBlocklist{}, nil)
	poller := NewPoller(manager, reconciler, time.Hour, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	poller.RefreshNow()
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/merge2048/game/engine"
	"github.com/wricardo/merge2048/game/service"
	"github.com/wricardo/merge2048/game/session"
)

// firstRand always picks the first empty cell and the lowest spawn value
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, firstRand{})
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) Count() int {
	return len(m.sessions)
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	// With firstRand the opening board is
	//   2 2 1 .
	//   . . . .
	defaultConfig := &engine.GameConfig{
		Name:        "test",
		Description: "Test configuration",
		BoardSize:   4,
		SpawnCount:  1,
		SpawnRange:  engine.ValueRange{Min: 1, Max: 3},
		InitialTiles: []int{
			2, 2, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
		},
	}

	// Opening board [1 1; 2 3]; a right shift leaves [3 2; 2 3], which is stuck
	endgame := &engine.GameConfig{
		Name:         "endgame",
		Description:  "One move from the end",
		BoardSize:    2,
		SpawnCount:   1,
		SpawnRange:   engine.ValueRange{Min: 3, Max: 4},
		InitialTiles: []int{1, 1, 2, 0},
	}

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
			"endgame": endgame,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, name)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		if name == "default" {
			continue
		}
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			BoardSize:   config.BoardSize,
			SpawnCount:  config.SpawnCount,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func newTestService(opts ...service.Option) service.GameService {
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), opts...)
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantErr    bool
	}{
		{name: "create with default config", configName: "", wantConfig: "test"},
		{name: "create with specific config", configName: "endgame", wantConfig: "endgame"},
		{name: "create with invalid config", configName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrConfigNotFound)
				assert.Contains(t, err.Error(), "available configs")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, session.ConfigName)
			assert.NotNil(t, session.GameState)
			assert.NotNil(t, session.GameConfig)
		})
	}
}

func TestGameService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	first, err := svc.CreateSession(ctx, "test")
	require.NoError(t, err)
	second, err := svc.CreateSession(ctx, "endgame")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	got, err := svc.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "test", got.ConfigName)

	require.NoError(t, svc.DeleteSession(ctx, second.ID))
	_, err = svc.GetSession(ctx, second.ID)
	assert.Error(t, err)
	assert.Error(t, svc.DeleteSession(ctx, second.ID))
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	require.NoError(t, err)

	t.Run("invalid session", func(t *testing.T) {
		_, err := svc.Move(ctx, "nonexistent", "up")
		assert.Error(t, err)
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := svc.Move(ctx, sessionInfo.ID, "diagonal")
		assert.ErrorIs(t, err, engine.ErrInvalidDirection)
	})

	t.Run("no-op is not an error", func(t *testing.T) {
		before, err := svc.GetGameState(ctx, sessionInfo.ID)
		require.NoError(t, err)

		result, err := svc.Move(ctx, sessionInfo.ID, "up")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.Traces)
		assert.Empty(t, result.Spawned)
		assert.Contains(t, result.Message, "Cannot move up")
		assert.Equal(t, before.Tiles, result.GameState.Tiles)
		assert.Equal(t, 0, result.GameState.MoveCount)
		require.Len(t, result.Events, 1)
		assert.Equal(t, service.EventNoop, result.Events[0].Type)
	})

	t.Run("merge left", func(t *testing.T) {
		result, err := svc.Move(ctx, sessionInfo.ID, "LEFT")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 4, result.GameState.Score)
		assert.Equal(t, 1, result.GameState.MoveCount)
		assert.Equal(t, []int{4, 1, 1, 0}, result.GameState.Tiles[0])
		assert.Equal(t, []engine.Position{{Row: 0, Col: 2}}, result.Spawned)
		assert.Contains(t, result.Message, "1 merges, +4 points")
		assert.NotEmpty(t, result.PossibleMoves)

		var merges []service.GameEvent
		for _, ev := range result.Events {
			if ev.Type == service.EventMerge {
				merges = append(merges, ev)
			}
		}
		require.Len(t, merges, 1)
		assert.Equal(t, 4, merges[0].Value)
		assert.Equal(t, &engine.Position{Row: 0, Col: 0}, merges[0].Position)
	})
}

func TestGameService_MoveToGameOver(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "endgame")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1}, {2, 3}}, sessionInfo.GameState.Tiles)

	result, err := svc.Move(ctx, sessionInfo.ID, "right")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.GameState.GameOver)
	assert.Equal(t, engine.GameOver, result.GameState.Status)
	assert.Equal(t, [][]int{{3, 2}, {2, 3}}, result.GameState.Tiles)
	assert.Contains(t, result.Message, "Game over")
	assert.Empty(t, result.PossibleMoves)
	assert.Equal(t, service.EventGameOver, result.Events[len(result.Events)-1].Type)

	_, err = svc.Move(ctx, sessionInfo.ID, "left")
	assert.ErrorIs(t, err, engine.ErrGameOver)

	state, err := svc.Reset(ctx, sessionInfo.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.Playing, state.Status)
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, [][]int{{1, 1}, {2, 3}}, state.Tiles)
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	require.NoError(t, err)

	for _, dir := range []string{"up", "left", "down", "right", "up"} {
		_, err := svc.Move(ctx, sessionInfo.ID, dir)
		require.NoError(t, err)
	}

	t.Run("defaults to newest first", func(t *testing.T) {
		history, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{})
		require.NoError(t, err)
		assert.Equal(t, 5, history.TotalMoves)
		require.Len(t, history.Moves, 5)
		assert.Equal(t, 5, history.Moves[0].MoveNumber)
		assert.Equal(t, 1, history.Moves[4].MoveNumber)
		assert.False(t, history.Moves[4].Success, "first move was a no-op")
	})

	t.Run("ascending pages", func(t *testing.T) {
		page1, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"})
		require.NoError(t, err)
		assert.Equal(t, 3, page1.TotalPages)
		assert.True(t, page1.HasNext)
		assert.False(t, page1.HasPrevious)
		require.Len(t, page1.Moves, 2)
		assert.Equal(t, engine.Up, page1.Moves[0].Direction)
		assert.Equal(t, engine.Left, page1.Moves[1].Direction)

		page3, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{Page: 3, Limit: 2, Order: "asc"})
		require.NoError(t, err)
		assert.Len(t, page3.Moves, 1)
		assert.False(t, page3.HasNext)
		assert.True(t, page3.HasPrevious)
	})

	t.Run("page past the end", func(t *testing.T) {
		history, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{Page: 10, Limit: 2, Order: "asc"})
		require.NoError(t, err)
		assert.NotNil(t, history.Moves)
		assert.Empty(t, history.Moves)
	})
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	configs, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "endgame", configs[0].ConfigID)
	assert.Equal(t, 2, configs[0].BoardSize)

	config, err := svc.LoadConfig(ctx, "endgame")
	require.NoError(t, err)
	assert.Equal(t, "endgame", config.Name)
}

func TestGameService_CanceledContext(t *testing.T) {
	svc := newTestService()
	sessionInfo, err := svc.CreateSession(context.Background(), "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Move(ctx, sessionInfo.ID, "left")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.CreateSession(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)

	state, err := svc.GetGameState(context.Background(), sessionInfo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.MoveCount, "canceled move must not touch the board")
}

func TestGameService_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	sessions := NewMockSessionManager()
	metrics := service.NewMetrics(reg, sessions.Count)
	svc := service.NewGameService(sessions, NewMockConfigManager(), service.WithMetrics(metrics))

	classic, err := svc.CreateSession(ctx, "test")
	require.NoError(t, err)
	endgame, err := svc.CreateSession(ctx, "endgame")
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsActive))

	_, err = svc.Move(ctx, classic.ID, "up")
	require.NoError(t, err)
	_, err = svc.Move(ctx, classic.ID, "left")
	require.NoError(t, err)
	_, err = svc.Move(ctx, endgame.ID, "right")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Moves.WithLabelValues(service.ResultNoop)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Moves.WithLabelValues(service.ResultMoved)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Merges))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GamesOver))

	require.NoError(t, svc.DeleteSession(ctx, endgame.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsActive))

	// Removal behind the service's back is still reported
	require.NoError(t, sessions.Delete(classic.ID))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SessionsActive))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestGameService_NilSessionsGauge(t *testing.T) {
	metrics := service.NewMetrics(nil, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SessionsActive))
}

func TestGameService_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewManager(session.WithRand(func(*engine.GameConfig) engine.Rand {
		return firstRand{}
	}))
	svc := service.NewGameService(sessions, NewMockConfigManager())

	var ids []string
	for _, name := range []string{"test", "endgame", ""} {
		info, err := svc.CreateSession(ctx, name)
		require.NoError(t, err)
		ids = append(ids, info.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := ids[n%len(ids)]

			if _, err := svc.GetSession(ctx, id); err != nil {
				errs <- err
			}
			list, err := svc.ListSessions(ctx)
			if err != nil {
				errs <- err
			} else if len(list) != len(ids) {
				errs <- fmt.Errorf("listed %d sessions, want %d", len(list), len(ids))
			}
			if _, err := svc.GetGameState(ctx, id); err != nil {
				errs <- err
			}
			if _, err := svc.GetMoveHistory(ctx, id, service.HistoryOptions{}); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent reads: %v", err)
	}

	info, err := svc.GetSession(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, info.LastAccessedAt.Before(info.CreatedAt))
}

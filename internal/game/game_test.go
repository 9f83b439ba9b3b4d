package game

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return epoch.Add(time.Duration(seconds * float64(time.Second)))
}

// openBoard is a 400x300 board with the goal in the far right and nothing
// else on it.
func openBoard(start geom.Point) *level.Level {
	return &level.Level{
		Name:  "open",
		Size:  geom.Size{W: 400, H: 300},
		Start: start,
		End:   geom.NewRect(330, 120, 60, 60),
		Walls: []geom.Rect{},
		Holes: []geom.Point{},
	}
}

func TestNewGameStartsAtRest(t *testing.T) {
	lvl := openBoard(geom.NewPoint(25, 150))
	g := New(lvl, DefaultParams())

	assert.Equal(t, InProgress{}, g.State)
	assert.Equal(t, lvl.Start, g.BallPos)
	assert.True(t, g.BallV.IsZero())
	assert.Zero(t, g.AngleX)
	assert.Zero(t, g.AngleY)
	assert.Nil(t, g.prevUpdate)
	assert.Equal(t, DefaultParams(), g.Params())
}

func TestFirstUpdateIntegratesNoTime(t *testing.T) {
	g := New(openBoard(geom.NewPoint(200, 150)), DefaultParams())
	g.BallV = geom.NewVec(100, 0)
	g.RotateX(0.1)

	g.Update(at(0))
	assert.Equal(t, geom.NewPoint(200, 150), g.BallPos)
	assert.Equal(t, geom.NewVec(100, 0), g.BallV)
	require.NotNil(t, g.prevUpdate)
	assert.Equal(t, at(0), *g.prevUpdate)
}

func TestIntegratorIsSemiImplicit(t *testing.T) {
	g := New(openBoard(geom.NewPoint(100, 150)), DefaultParams())
	g.AngleX = 0.1
	g.AngleY = -0.05

	g.Update(at(0))
	g.Update(at(0.1))

	// v' = (0.1, -0.05) * 3000 * 0.1 = (30, -15); p' = p + v' * 0.1
	assert.InDelta(t, 30, g.BallV.X, eps)
	assert.InDelta(t, -15, g.BallV.Y, eps)
	assert.InDelta(t, 103, g.BallPos.X, eps)
	assert.InDelta(t, 148.5, g.BallPos.Y, eps)
}

func TestLeftEdgeBounce(t *testing.T) {
	g := New(openBoard(geom.NewPoint(25, 150)), DefaultParams())
	g.BallV = geom.NewVec(-50, 0)

	g.Update(at(0))
	g.Update(at(0.1))

	assert.InDelta(t, 20, g.BallPos.X, eps)
	assert.InDelta(t, 150, g.BallPos.Y, eps)
	assert.InDelta(t, 10, g.BallV.X, eps)
	assert.InDelta(t, 0, g.BallV.Y, eps)
	assert.Equal(t, InProgress{}, g.State)
}

func TestEdgesClampEveryAxis(t *testing.T) {
	testCases := []struct {
		name  string
		start geom.Point
		v     geom.Vec
		pos   geom.Point
		wantV geom.Vec
	}{
		{"right", geom.NewPoint(370, 100), geom.NewVec(200, 0), geom.NewPoint(380, 100), geom.NewVec(-40, 0)},
		{"top", geom.NewPoint(200, 30), geom.NewVec(0, -200), geom.NewPoint(200, 20), geom.NewVec(0, 40)},
		{"bottom", geom.NewPoint(200, 270), geom.NewVec(0, 200), geom.NewPoint(200, 280), geom.NewVec(0, -40)},
		{"corner", geom.NewPoint(30, 30), geom.NewVec(-200, -200), geom.NewPoint(20, 20), geom.NewVec(40, 40)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(openBoard(tc.start), DefaultParams())
			g.BallV = tc.v
			g.Update(at(0))
			g.Update(at(0.1))

			assert.InDelta(t, tc.pos.X, g.BallPos.X, eps)
			assert.InDelta(t, tc.pos.Y, g.BallPos.Y, eps)
			assert.InDelta(t, tc.wantV.X, g.BallV.X, eps)
			assert.InDelta(t, tc.wantV.Y, g.BallV.Y, eps)
		})
	}
}

func TestEdgeContactMovingAwayKeepsVelocity(t *testing.T) {
	g := New(openBoard(geom.NewPoint(20, 150)), DefaultParams())
	g.BallV = geom.NewVec(0, 30)

	g.Update(at(0))
	g.Update(at(0.1))

	assert.InDelta(t, 20, g.BallPos.X, eps)
	assert.InDelta(t, 153, g.BallPos.Y, eps)
	assert.Equal(t, geom.NewVec(0, 30), g.BallV)
}

func TestBouncedBallRestingOnEdgeIsNotFlippedBack(t *testing.T) {
	g := New(openBoard(geom.NewPoint(25, 150)), DefaultParams())
	g.BallV = geom.NewVec(-50, 0)

	g.Update(at(0))
	g.Update(at(0.1))
	require.Equal(t, geom.NewPoint(20, 150), g.BallPos)
	require.InDelta(t, 10, g.BallV.X, eps)

	// Still on the edge after a zero-length tick, and already moving away.
	g.ResetTime()
	g.Update(at(0.2))
	assert.Equal(t, geom.NewPoint(20, 150), g.BallPos)
	assert.InDelta(t, 10, g.BallV.X, eps)
	assert.Zero(t, g.BallV.Y)
}

func TestHeadOnWallBounceKeepsBounceFraction(t *testing.T) {
	lvl := openBoard(geom.NewPoint(170, 150))
	lvl.Walls = []geom.Rect{geom.NewRect(200, 100, 20, 100)}
	params := DefaultParams()
	g := New(lvl, params)
	g.BallV = geom.NewVec(300, 0)

	g.Update(at(0))
	g.Update(at(0.05))

	assert.InDelta(t, 180, g.BallPos.X, eps)
	assert.InDelta(t, 150, g.BallPos.Y, eps)
	assert.InDelta(t, -60, g.BallV.X, eps)
	assert.InDelta(t, params.BounceCoeff*300, g.BallV.Magnitude(), eps)
}

func TestWallBouncePreservesTangentialVelocity(t *testing.T) {
	lvl := openBoard(geom.NewPoint(170, 150))
	lvl.Walls = []geom.Rect{geom.NewRect(200, 100, 20, 100)}
	g := New(lvl, DefaultParams())
	g.BallV = geom.NewVec(300, 40)

	g.Update(at(0))
	g.Update(at(0.05))

	assert.InDelta(t, 180, g.BallPos.X, eps)
	assert.InDelta(t, -60, g.BallV.X, eps)
	assert.InDelta(t, 40, g.BallV.Y, eps)
}

func TestWallCornerPushesAlongDiagonal(t *testing.T) {
	lvl := openBoard(geom.NewPoint(190, 90))
	lvl.Walls = []geom.Rect{geom.NewRect(200, 100, 20, 100)}
	g := New(lvl, DefaultParams())

	// Closest wall point is the corner (200,100); the ball is 10*sqrt(2) away.
	g.Update(at(0))

	d := geom.Distance(g.BallPos, geom.NewPoint(200, 100))
	assert.InDelta(t, 20, d, eps)
	assert.InDelta(t, g.BallPos.X-200, g.BallPos.Y-100, eps)
	assert.True(t, g.BallV.IsZero())
}

func TestBallCenterOnWallIsLeftAlone(t *testing.T) {
	lvl := openBoard(geom.NewPoint(210, 150))
	lvl.Walls = []geom.Rect{geom.NewRect(200, 100, 20, 100)}
	g := New(lvl, DefaultParams())
	g.BallV = geom.NewVec(5, 0)

	require.NotPanics(t, func() { g.Update(at(0)) })
	assert.Equal(t, geom.NewPoint(210, 150), g.BallPos)
	assert.Equal(t, geom.NewVec(5, 0), g.BallV)
}

func TestWallsResolveInLevelOrder(t *testing.T) {
	// Two walls meeting at an inside corner. Each fold step works on the
	// result of the previous one, so the ball ends up clear of both.
	lvl := openBoard(geom.NewPoint(185, 185))
	lvl.Walls = []geom.Rect{
		geom.NewRect(200, 100, 20, 120),
		geom.NewRect(100, 200, 120, 20),
	}
	g := New(lvl, DefaultParams())
	g.BallV = geom.NewVec(50, 50)

	g.Update(at(0))

	assert.InDelta(t, 180, g.BallPos.X, eps)
	assert.InDelta(t, 180, g.BallPos.Y, eps)
	assert.InDelta(t, -10, g.BallV.X, eps)
	assert.InDelta(t, -10, g.BallV.Y, eps)
}

func TestReachingGoalWins(t *testing.T) {
	g := New(openBoard(geom.NewPoint(300, 150)), DefaultParams())
	g.BallV = geom.NewVec(400, 0)

	g.Update(at(0))
	assert.Equal(t, InProgress{}, g.State)
	g.Update(at(0.1))

	assert.Equal(t, Won{}, g.State)
	assert.Equal(t, StatusWon, g.State.Status())
	assert.InDelta(t, 340, g.BallPos.X, eps)
	assert.Equal(t, geom.NewVec(400, 0), g.BallV)
}

func TestPassingOverHoleLoses(t *testing.T) {
	lvl := openBoard(geom.NewPoint(150, 100))
	lvl.Holes = []geom.Point{geom.NewPoint(100, 100)}
	g := New(lvl, DefaultParams())
	g.BallV = geom.NewVec(-400, 0)

	g.Update(at(0))
	g.Update(at(0.1))

	assert.InDelta(t, 10, geom.Distance(g.BallPos, geom.NewPoint(100, 100)), eps)
	assert.Equal(t, Lost{Hole: geom.NewPoint(100, 100), TLost: at(0.1)}, g.State)
	assert.Equal(t, StatusLost, g.State.Status())
	assert.Equal(t, geom.NewVec(-400, 0), g.BallV)
}

func TestFirstListedHoleWins(t *testing.T) {
	lvl := openBoard(geom.NewPoint(100, 100))
	lvl.Holes = []geom.Point{geom.NewPoint(110, 100), geom.NewPoint(95, 100)}
	g := New(lvl, DefaultParams())

	g.Update(at(1))

	lost, ok := g.State.(Lost)
	require.True(t, ok)
	assert.Equal(t, geom.NewPoint(110, 100), lost.Hole)
	assert.Equal(t, at(1), lost.TLost)
}

func TestGoalTakesPrecedenceOverHole(t *testing.T) {
	lvl := openBoard(geom.NewPoint(340, 150))
	lvl.Holes = []geom.Point{geom.NewPoint(340, 150)}
	g := New(lvl, DefaultParams())

	g.Update(at(0))
	assert.Equal(t, Won{}, g.State)
}

func TestTerminalStateIsStable(t *testing.T) {
	lvl := openBoard(geom.NewPoint(150, 100))
	lvl.Holes = []geom.Point{geom.NewPoint(100, 100)}
	g := New(lvl, DefaultParams())
	g.BallV = geom.NewVec(-400, 0)
	g.Update(at(0))
	g.Update(at(0.1))
	require.True(t, IsTerminal(g.State))

	state, pos, v, prev := g.State, g.BallPos, g.BallV, *g.prevUpdate
	g.RotateX(0.1)
	for i := 2; i < 20; i++ {
		g.Update(at(float64(i) * 0.1))
		assert.Equal(t, state, g.State)
		assert.Equal(t, pos, g.BallPos)
		assert.Equal(t, v, g.BallV)
		assert.Equal(t, prev, *g.prevUpdate)
	}
}

func TestResetTimeMatchesFreshGame(t *testing.T) {
	lvl := openBoard(geom.NewPoint(100, 150))
	g := New(lvl, DefaultParams())
	g.RotateX(0.07)
	g.RotateY(-0.03)
	g.Update(at(0))
	g.Update(at(0.1))
	g.Update(at(0.2))

	fresh := New(lvl, DefaultParams())
	fresh.BallPos, fresh.BallV = g.BallPos, g.BallV
	fresh.AngleX, fresh.AngleY = g.AngleX, g.AngleY

	g.ResetTime()
	assert.Nil(t, g.prevUpdate)

	// A long pause must not be integrated.
	g.Update(at(60))
	fresh.Update(at(60))

	assert.Equal(t, fresh.BallPos, g.BallPos)
	assert.Equal(t, fresh.BallV, g.BallV)

	g.Update(at(60.1))
	fresh.Update(at(60.1))
	assert.Equal(t, fresh.BallPos, g.BallPos)
	assert.Equal(t, fresh.BallV, g.BallV)
}

func TestRotateClampsAccumulatedTilt(t *testing.T) {
	params := DefaultParams()
	g := New(openBoard(geom.NewPoint(100, 100)), params)

	g.RotateX(0.04)
	g.RotateX(0.04)
	assert.InDelta(t, 0.08, g.AngleX, eps)
	g.RotateX(0.04)
	assert.Equal(t, params.MaxAngle, g.AngleX)
	g.RotateY(-5)
	assert.Equal(t, -params.MaxAngle, g.AngleY)
	g.RotateY(0.02)
	assert.InDelta(t, -0.08, g.AngleY, eps)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		g.RotateX((rng.Float64() - 0.5) * 0.3)
		g.RotateY((rng.Float64() - 0.5) * 0.3)
		require.LessOrEqual(t, math.Abs(g.AngleX), params.MaxAngle)
		require.LessOrEqual(t, math.Abs(g.AngleY), params.MaxAngle)
	}
}

func TestBallNeverPenetrates(t *testing.T) {
	lvl := &level.Level{
		Name:  "maze",
		Size:  geom.Size{W: 400, H: 300},
		Start: geom.NewPoint(50, 250),
		End:   geom.NewRect(0, 0, 1, 1),
		Walls: []geom.Rect{
			geom.NewRect(100, 60, 60, 120),
			geom.NewRect(250, 150, 80, 60),
		},
		Holes: []geom.Point{},
	}
	params := DefaultParams()
	r := params.BallRadius
	const tol = 1e-6

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 20; run++ {
		g := New(lvl, params)
		now := 0.0
		for step := 0; step < 600; step++ {
			g.RotateX((rng.Float64() - 0.5) * 0.05)
			g.RotateY((rng.Float64() - 0.5) * 0.05)
			now += 1.0 / 60
			g.Update(at(now))

			require.GreaterOrEqual(t, g.BallPos.X, r-tol)
			require.LessOrEqual(t, g.BallPos.X, lvl.Size.W-r+tol)
			require.GreaterOrEqual(t, g.BallPos.Y, r-tol)
			require.LessOrEqual(t, g.BallPos.Y, lvl.Size.H-r+tol)
			for _, w := range lvl.Walls {
				d := geom.Distance(g.BallPos, w.ClosestPoint(g.BallPos))
				require.GreaterOrEqual(t, d, r-tol, "run %d step %d wall %v", run, step, w)
			}
		}
		assert.Equal(t, InProgress{}, g.State)
	}
}

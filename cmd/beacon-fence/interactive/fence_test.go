package interactive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/monitor"
	"github.com/sigobj/beaconfence/pkg/monitor/mocks"
)

var testID = fence.NewIdentity("BeaconRegion01", uuid.MustParse("EE7C8AFC-4DED-48D6-9E17-19CF106D89EF"), 501, 201)

func testConsole(t *testing.T) (*Console, *monitor.Monitor, *mocks.MockScanner, *bytes.Buffer) {
	t.Helper()
	scanner := mocks.NewMockScanner(t)
	mon := monitor.New(fence.New(testID), scanner, monitor.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	var out bytes.Buffer
	return newConsole(mon, &out), mon, scanner, &out
}

func TestConsoleStartStatusStop(t *testing.T) {
	c, mon, scanner, out := testConsole(t)
	ctx := context.Background()

	scanner.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	scanner.EXPECT().Stop().Return(nil).Once()

	require.True(t, c.Execute(ctx, "start"))
	assert.Contains(t, out.String(), "Monitoring BeaconRegion01")
	assert.True(t, mon.Monitoring())

	mon.OnRegionEntered(testID)
	mon.OnReadingsUpdated(testID, []fence.Reading{fence.ReadingFor(testID, fence.ProximityNear, 3.46)})

	out.Reset()
	require.True(t, c.Execute(ctx, "status"))
	assert.Contains(t, out.String(), "state:  MONITORING")
	assert.Contains(t, out.String(), "inside: true")
	assert.Contains(t, out.String(), "Location: Near ~3.46m")

	out.Reset()
	require.True(t, c.Execute(ctx, "stop"))
	assert.Contains(t, out.String(), "Stopped")
	assert.False(t, mon.Inside())
}

func TestConsoleStartFailure(t *testing.T) {
	c, mon, scanner, out := testConsole(t)

	scanner.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no network")).Once()

	require.True(t, c.Execute(context.Background(), "start"))
	assert.Contains(t, out.String(), "Start failed: no network")
	assert.False(t, mon.Monitoring())
}

func TestConsoleQuitAndUnknown(t *testing.T) {
	c, _, _, out := testConsole(t)
	ctx := context.Background()

	assert.True(t, c.Execute(ctx, ""))
	assert.True(t, c.Execute(ctx, "jump"))
	assert.Contains(t, out.String(), "Unknown command: jump")
	assert.False(t, c.Execute(ctx, "q"))
}

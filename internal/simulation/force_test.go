package simulation

import (
	"testing"
	"time"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

func TestPendingForceZeroFromExpiryOn(t *testing.T) {
	f := PendingForce{Vector: types.Vec2{Forward: ForwardForce}, ExpiresAt: 100 * time.Millisecond}

	for now := time.Duration(0); now < 100*time.Millisecond; now += time.Millisecond {
		if got := f.At(now); got.Forward != ForwardForce {
			t.Fatalf("expected full force at %v, got=%+v", now, got)
		}
	}
	for _, now := range []time.Duration{100 * time.Millisecond, 101 * time.Millisecond, time.Second} {
		if got := f.At(now); got != (types.Vec2{}) {
			t.Fatalf("expected zero force at %v, got=%+v", now, got)
		}
	}
}

func TestForceChannelLastWriteWinsPerAxis(t *testing.T) {
	var c ForceChannel
	c.Drive(ForwardForce, 0, PushDuration)
	c.Drive(ForwardForce, 50*time.Millisecond, PushDuration)

	drive, _ := c.Pending()
	if drive.Vector.Forward != ForwardForce {
		t.Fatalf("expected overwrite not summation, got=%f", drive.Vector.Forward)
	}
	if drive.ExpiresAt != 150*time.Millisecond {
		t.Fatalf("expected expiry from latest write, got=%v", drive.ExpiresAt)
	}

	c.Drive(-BackwardForce, 60*time.Millisecond, PushDuration)
	drive, _ = c.Pending()
	if drive.Vector.Forward != -BackwardForce {
		t.Fatalf("expected backward force to replace forward, got=%f", drive.Vector.Forward)
	}
}

func TestForceChannelAxesAreIndependent(t *testing.T) {
	var c ForceChannel
	c.Drive(ForwardForce, 0, PushDuration)
	c.Steer(-SteerForce, 0, SteerDuration)

	got := c.Sample(120 * time.Millisecond)
	if got.Forward != 0 {
		t.Fatalf("expected drive expired at 120ms, got=%f", got.Forward)
	}
	if got.Lateral != -SteerForce {
		t.Fatalf("expected steer still active at 120ms, got=%f", got.Lateral)
	}

	drive, steer := c.Pending()
	if drive != (PendingForce{}) {
		t.Fatalf("expected expired drive record dropped, got=%+v", drive)
	}
	if steer.ExpiresAt != SteerDuration {
		t.Fatalf("expected steer record kept, got=%+v", steer)
	}
}

func TestForceChannelResetClearsEverything(t *testing.T) {
	var c ForceChannel
	c.Drive(ForwardForce, 0, PushDuration)
	c.Steer(SteerForce, 0, SteerDuration)
	c.CountPush()

	c.Cancel()
	if c.Sample(0) != (types.Vec2{}) {
		t.Fatal("expected no force after cancel")
	}
	if c.Pushes() != 1 {
		t.Fatalf("expected cancel to keep push count, got=%d", c.Pushes())
	}

	c.Reset()
	if c.Pushes() != 0 {
		t.Fatalf("expected reset to clear push count, got=%d", c.Pushes())
	}
}

package ledstrip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledsyncd/internal/devicetest"
	"github.com/jmylchreest/ledsyncd/internal/errors"
)

var red = HSV{H: 0, S: 255, V: 255}

func TestSetBrightness_SyncFansOutToEveryDevice(t *testing.T) {
	m := newTestManager()
	var fakes []*devicetest.Device
	var addrs []string
	for range 3 {
		f, a := addFake(t, m)
		fakes = append(fakes, f)
		addrs = append(addrs, a)
	}
	m.SetSyncMode(true)

	require.NoError(t, m.SetBrightness(context.Background(), addrs[0], 40))

	for i, f := range fakes {
		assert.Equal(t, 1, f.Calls("/setBrightness"), "device %d", i)
		assert.Equal(t, 102, f.State().Brightness)
		d, err := m.GetDevice(addrs[i])
		require.NoError(t, err)
		assert.Equal(t, 40, d.Brightness)
	}
}

func TestSetBrightness_WithoutSyncOnlyTouchesTarget(t *testing.T) {
	m := newTestManager()
	fakeA, a := addFake(t, m)
	fakeB, _ := addFake(t, m)

	require.NoError(t, m.SetBrightness(context.Background(), a, 25))
	assert.Equal(t, 1, fakeA.Calls("/setBrightness"))
	assert.Equal(t, 0, fakeB.Calls("/setBrightness"))
}

func TestSetBrightness_ZeroDoesNotRaise(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m, devicetest.WithState(func(s *devicetest.State) { s.Brightness = 0 }))

	require.NoError(t, m.SetBrightness(context.Background(), addr, 10))
	assert.Equal(t, 1, fake.Calls("/setBrightness"))
	d, _ := m.GetDevice(addr)
	assert.Equal(t, 10, d.Brightness)
	assert.Nil(t, d.LastState, "brightness changes are not remembered")
}

func TestSetColor_RaisesBrightnessFromZero(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m, devicetest.WithState(func(s *devicetest.State) { s.Brightness = 0 }))

	require.NoError(t, m.SetColor(context.Background(), addr, red))
	assert.Equal(t, 1, fake.Calls("/setBrightness"))
	assert.Equal(t, 255, fake.State().Brightness)

	d, _ := m.GetDevice(addr)
	assert.Equal(t, "#ff0000", d.Color)
	assert.Equal(t, ModeSolidColor, d.Mode)
	assert.Equal(t, 100, d.Brightness)
	require.NotNil(t, d.LastState)
	assert.Equal(t, "#ff0000", d.LastState.SelectedColor)
	assert.Equal(t, ModeSolidColor, d.LastState.Mode)
	assert.Equal(t, EffectNameSolidColor, d.LastState.EffectName)
	assert.Equal(t, d.EffectCount, d.LastState.EffectNumber)
}

func TestSetColor_FailureRevertsTentativeColor(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	fake.FailPath("/setColor", true)

	err := m.SetColor(context.Background(), addr, red)
	require.Error(t, err)
	assert.True(t, errors.IsDeviceUnavailable(err))

	d, _ := m.GetDevice(addr)
	assert.Equal(t, White, d.SelectedColor)
	assert.Nil(t, d.LastState)
	assert.Equal(t, 1, fake.Calls("/status"), "no reconcile after a failed mutation")
}

func TestExecute_InvalidCommandSendsNothing(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)

	err := m.SetColor(context.Background(), addr, HSV{H: 300})
	assert.True(t, errors.IsInvalidInput(err))
	err = m.SetEffect(context.Background(), addr, -1)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Equal(t, 0, fake.Calls("/setColor"))
	assert.Equal(t, 0, fake.Calls("/setEffect"))

	assert.True(t, errors.IsNotFound(m.SetEffect(context.Background(), "missing", 1)))
}

func TestExecute_PartialFailureInSync(t *testing.T) {
	m := newTestManager()
	fakeA, a := addFake(t, m)
	fakeB, b := addFake(t, m)
	m.SetSyncMode(true)
	fakeB.FailPath("/setEffect", true)

	err := m.SetEffect(context.Background(), a, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), b)

	assert.Equal(t, "Fire", fakeA.State().EffectName)
	da, _ := m.GetDevice(a)
	db, _ := m.GetDevice(b)
	assert.Equal(t, "Fire", da.EffectName)
	assert.Equal(t, EffectNameSolidColor, db.EffectName)
	assert.Nil(t, db.LastState)
}

func TestSetEffect_RemembersEffect(t *testing.T) {
	m := newTestManager()
	_, addr := addFake(t, m)

	require.NoError(t, m.SetEffect(context.Background(), addr, 2))
	d, _ := m.GetDevice(addr)
	assert.Equal(t, "Twinkle", d.EffectName)
	require.NotNil(t, d.LastState)
	assert.Equal(t, 2, d.LastState.EffectNumber)
	assert.Equal(t, "Twinkle", d.LastState.EffectName)
	assert.Equal(t, ModeEffect, d.LastState.Mode)
	assert.Nil(t, d.LastState.CustomEffect)
}

func TestSetCustomEffect_RemembersPayload(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)

	effect := CustomEffect{FunctionNumber: 1, Speed: intPtr(5), Colors: []HSV{red}, Blend: true}
	require.NoError(t, m.SetCustomEffect(context.Background(), addr, effect))

	last := fake.State().LastCustom
	require.NotNil(t, last)
	assert.Equal(t, 1, last.FunctionNumber)
	assert.Equal(t, 5, *last.Speed)
	assert.True(t, last.Blend)

	d, _ := m.GetDevice(addr)
	assert.Equal(t, "Fire", d.EffectName)
	require.NotNil(t, d.LastState)
	require.NotNil(t, d.LastState.CustomEffect)
	assert.Equal(t, effect, *d.LastState.CustomEffect)
}

func TestCycleEffect(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)

	require.NoError(t, m.CycleEffect(context.Background(), addr))
	require.NoError(t, m.CycleEffect(context.Background(), addr))
	assert.Equal(t, 2, fake.Calls("/cycleEffect"))

	d, _ := m.GetDevice(addr)
	assert.Equal(t, "Fire", d.EffectName)
	require.NotNil(t, d.LastState)
	assert.Equal(t, "Fire", d.LastState.EffectName)
	assert.Equal(t, 1, d.LastState.EffectNumber)
}

func TestToggleOnOff_RestoresCustomEffect(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	ctx := context.Background()

	effect := CustomEffect{FunctionNumber: 1, Speed: intPtr(3), Colors: []HSV{red}}
	require.NoError(t, m.SetCustomEffect(ctx, addr, effect))
	require.NoError(t, m.SetBrightness(ctx, addr, 60))

	require.NoError(t, m.ToggleOnOff(ctx, addr))
	assert.Equal(t, "LEDs Off", fake.State().EffectName)
	d, _ := m.GetDevice(addr)
	assert.Equal(t, ModeOff, d.Mode)
	require.NotNil(t, d.LastState)
	assert.Equal(t, "Fire", d.LastState.EffectName)
	assert.Equal(t, 60, d.LastState.Brightness)
	require.NotNil(t, d.LastState.CustomEffect)

	require.NoError(t, m.ToggleOnOff(ctx, addr))
	assert.Equal(t, 2, fake.Calls("/setCustomEffect"))
	d, _ = m.GetDevice(addr)
	assert.Equal(t, "Fire", d.EffectName)
	assert.Equal(t, 60, d.Brightness)
	require.NotNil(t, d.LastState)
	assert.Equal(t, effect, *d.LastState.CustomEffect)
}

func TestToggleOnOff_RestoresSolidColor(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	ctx := context.Background()

	require.NoError(t, m.SetColor(ctx, addr, red))
	require.NoError(t, m.ToggleOnOff(ctx, addr))
	d, _ := m.GetDevice(addr)
	require.NotNil(t, d.LastState)
	assert.Nil(t, d.LastState.CustomEffect, "solid color never carries a custom payload")

	require.NoError(t, m.ToggleOnOff(ctx, addr))
	assert.Equal(t, 2, fake.Calls("/setColor"))
	assert.Equal(t, devicetest.HSV{H: 0, S: 255, V: 255}, fake.State().Color)
	d, _ = m.GetDevice(addr)
	assert.Equal(t, "#ff0000", d.Color)
	assert.Equal(t, ModeSolidColor, d.Mode)
}

func TestToggleOnOff_RestoresBuiltInEffect(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	ctx := context.Background()

	require.NoError(t, m.SetEffect(ctx, addr, 2))
	require.NoError(t, m.ToggleOnOff(ctx, addr))
	require.NoError(t, m.ToggleOnOff(ctx, addr))

	assert.Equal(t, 2, fake.Calls("/setEffect"))
	assert.Equal(t, 0, fake.Calls("/setCustomEffect"))
	assert.Equal(t, "Twinkle", fake.State().EffectName)
}

func TestToggleOnOff_NoMemoryFallsBackToWhite(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m, devicetest.WithState(func(s *devicetest.State) {
		s.EffectName = "LEDs Off"
		s.Color = devicetest.HSV{H: 170, S: 255, V: 255}
	}))

	require.NoError(t, m.ToggleOnOff(context.Background(), addr))
	assert.Equal(t, 1, fake.Calls("/setColor"))
	assert.Equal(t, 0, fake.Calls("/onOff"))
	d, _ := m.GetDevice(addr)
	assert.Equal(t, White, d.Color)
	assert.Equal(t, ModeSolidColor, d.Mode)
}

func TestToggleOnOff_SyncSendsRawToggleToAll(t *testing.T) {
	m := newTestManager()
	fakeA, a := addFake(t, m)
	fakeB, b := addFake(t, m)
	ctx := context.Background()

	require.NoError(t, m.SetEffect(ctx, b, 1))
	m.SetSyncMode(true)

	require.NoError(t, m.ToggleOnOff(ctx, a))
	assert.Equal(t, 1, fakeA.Calls("/onOff"))
	assert.Equal(t, 1, fakeB.Calls("/onOff"))
	assert.Equal(t, "LEDs Off", fakeB.State().EffectName)

	// Only the originating device's memory is captured.
	db, _ := m.GetDevice(b)
	require.NotNil(t, db.LastState)
	assert.Equal(t, "Fire", db.LastState.EffectName)

	// Power-on replays a's memory (solid white) on every device.
	require.NoError(t, m.ToggleOnOff(ctx, a))
	assert.Equal(t, EffectNameSolidColor, fakeB.State().EffectName)
	db, _ = m.GetDevice(b)
	assert.Equal(t, ModeSolidColor, db.Mode)
}

func TestToggleOnOff_FailureLeavesDeviceOn(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	fake.FailPath("/onOff", true)

	err := m.ToggleOnOff(context.Background(), addr)
	require.Error(t, err)
	d, _ := m.GetDevice(addr)
	assert.Equal(t, ModeSolidColor, d.Mode)
}

func TestExecuteDevice_IgnoresSyncMode(t *testing.T) {
	m := newTestManager()
	fakeA, a := addFake(t, m)
	fakeB, _ := addFake(t, m)
	m.SetSyncMode(true)

	require.NoError(t, m.ExecuteDevice(context.Background(), a, EffectCommand(1)))
	assert.Equal(t, 1, fakeA.Calls("/setEffect"))
	assert.Equal(t, 0, fakeB.Calls("/setEffect"))
}

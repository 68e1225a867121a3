// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-blkid/blkid"
	"github.com/siderolabs/go-blkid/cache"
)

// fakeProber returns fixed results per device path.
type fakeProber struct {
	devices map[string]cache.Info
	errors  map[string]error

	calls []string
}

func (p *fakeProber) probe(path string) (cache.Info, error) {
	p.calls = append(p.calls, path)

	if err, ok := p.errors[path]; ok {
		return cache.Info{}, err
	}

	return p.devices[path], nil
}

func info(devNo uint64, tags ...blkid.Tag) cache.Info {
	return cache.Info{DeviceNumber: devNo, Tags: tags}
}

func label(v string) blkid.Tag { return blkid.NewTagString(blkid.TagLabel, v) }

func uuidTag(v string) blkid.Tag { return blkid.NewTagString(blkid.TagUUID, v) }

// clock is a settable time source.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newCache(t *testing.T, cfg cache.Config) (*cache.Cache, *clock) {
	t.Helper()

	if cfg.AutoSaveChangesTo == "" && !cfg.DiscardChangesOnDrop {
		cfg.AutoSaveChangesTo = filepath.Join(t.TempDir(), "blkid.tab")
	}

	cfg.Logger = zaptest.NewLogger(t)

	c, err := cache.New(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})

	// device nodes in tests are created now, entries must be newer
	clk := &clock{now: time.Now().Add(time.Hour)}
	cache.SetClock(c, clk.Now)

	return c, clk
}

// touch creates an empty file and its parent directories.
func touch(t *testing.T, path string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	return path
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cache.New(cache.Config{
		DiscardChangesOnDrop: true,
		AutoSaveChangesTo:    "/tmp/blkid.tab",
	})
	require.Error(t, err)

	var builderErr *cache.BuilderError

	require.True(t, errors.As(err, &builderErr))
	assert.Equal(t, cache.BuilderErrorMutuallyExclusive, builderErr.Kind)
	assert.Equal(t, "can not set `DiscardChangesOnDrop` and `AutoSaveChangesTo` simultaneously", builderErr.Msg)

	c, err := cache.New(cache.Config{DiscardChangesOnDrop: true})
	require.NoError(t, err)

	assert.Equal(t, os.DevNull, c.Destination())
	assert.NoError(t, c.Close())
}

func TestNewDefaultDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.tab")

	t.Setenv(cache.EnvCacheFile, path)

	c, err := cache.New(cache.Config{})
	require.NoError(t, err)

	assert.Equal(t, path, c.Destination())
	assert.NoError(t, c.Close())

	// nothing changed, nothing saved
	assert.NoFileExists(t, path)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blkid.tab")

	writeFile(t, path, strings.Join([]string{
		`<device DEVNO="0x0801" TIME="1697364422.123456" LABEL="root" TYPE="ext4">/dev/sda1</device>`,
		`<device DEVNO=0x0802>/dev/sda2</device>`,
		`<device DEVNO="0xfd00" TIME="1697364422.000000" PRI="40" UUID="c0ffee">/dev/mapper/vg-root</device>`,
	}, "\n"))

	c, _ := newCache(t, cache.Config{AutoSaveChangesTo: path})

	assert.Equal(t, 2, c.Len())

	d, err := c.LookupDevice("/dev/sda1", cache.OperationFind)
	require.NoError(t, err)

	assert.Equal(t, uint64(0x801), d.DeviceNumber())
	assert.Equal(t, int64(1697364422), d.Time().Unix())

	fsType, ok := d.TagValue(blkid.TagType)
	assert.True(t, ok)
	assert.Equal(t, "ext4", fsType)

	d, err = c.LookupDevice("/dev/mapper/vg-root", cache.OperationFind)
	require.NoError(t, err)

	assert.Equal(t, cache.PriorityDM, d.Priority())
	assert.True(t, d.HasTag(uuidTag("c0ffee")))
}

func TestEmptyName(t *testing.T) {
	t.Parallel()

	c, _ := newCache(t, cache.Config{})

	for _, op := range []cache.Operation{
		cache.OperationCreate,
		cache.OperationFind,
		cache.OperationNormal,
		cache.OperationVerify,
	} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := c.LookupDevice("", op)
			assert.ErrorIs(t, err, cache.ErrEmptyDeviceName)
		})
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "blkid.tab")

	c, err := cache.New(cache.Config{
		AutoSaveChangesTo: path,
		Probe:             (&fakeProber{}).probe,
		Logger:            zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	d, err := c.LookupDevice("/dev/sdz1", cache.OperationCreate)
	require.NoError(t, err)

	assert.Equal(t, "/dev/sdz1", d.Name())
	assert.Empty(t, d.Tags())

	// second create returns the same entry
	_, err = c.LookupDevice("/dev/sdz1", cache.OperationCreate)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())

	_, err = c.LookupDevice("/dev/sd\x00", cache.OperationCreate)
	assert.ErrorIs(t, err, cache.ErrDeviceCreation)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 1)

	assert.True(t, strings.HasPrefix(lines[0], "<device "))
	assert.True(t, strings.HasSuffix(lines[0], ">/dev/sdz1</device>"))

	st, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, fs.FileMode(0o644), st.Mode().Perm())
}

func TestFind(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{}
	c, _ := newCache(t, cache.Config{Probe: prober.probe})

	_, err := c.LookupDevice("/dev/sda1", cache.OperationFind)
	assert.ErrorIs(t, err, cache.ErrDeviceNotFound)
	assert.ErrorContains(t, err, "/dev/sda1")

	assert.Empty(t, prober.calls)
}

func TestNormal(t *testing.T) {
	t.Parallel()

	dev := touch(t, filepath.Join(t.TempDir(), "sda1"))

	prober := &fakeProber{
		devices: map[string]cache.Info{
			dev: info(0x801, label("root")),
		},
	}

	c, clk := newCache(t, cache.Config{Probe: prober.probe})

	d, err := c.LookupDevice(dev, cache.OperationNormal)
	require.NoError(t, err)

	assert.Equal(t, uint64(0x801), d.DeviceNumber())
	assert.True(t, d.HasTag(label("root")))
	assert.True(t, clk.now.Equal(d.Time()))
	assert.Len(t, prober.calls, 1)

	// verified entries stay fresh for the probe interval
	clk.Advance(cache.DefaultProbeInterval - time.Second)

	value, ok := c.TagValueFromDevice(dev, blkid.TagLabel)
	assert.True(t, ok)
	assert.Equal(t, "root", value)
	assert.Len(t, prober.calls, 1)

	clk.Advance(2 * time.Second)

	prober.devices[dev] = info(0x801, label("data"))

	value, ok = c.TagValueFromDevice(dev, blkid.TagLabel)
	assert.True(t, ok)
	assert.Equal(t, "data", value)
	assert.Len(t, prober.calls, 2)

	_, ok = c.TagValueFromDevice(dev, blkid.TagUUID)
	assert.False(t, ok)
}

func TestNormalUnverified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dev := touch(t, filepath.Join(dir, "sda1"))
	path := filepath.Join(dir, "blkid.tab")

	// loaded entries are only fresh right after they were written
	writeFile(t, path, `<device DEVNO="0x0801" TIME="`+
		strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)+`.000000" LABEL="old">`+dev+"</device>\n")

	prober := &fakeProber{
		devices: map[string]cache.Info{
			dev: info(0x801, label("new")),
		},
	}

	c, clk := newCache(t, cache.Config{AutoSaveChangesTo: path, Probe: prober.probe})

	value, _ := c.TagValueFromDevice(dev, blkid.TagLabel)
	assert.Equal(t, "old", value)
	assert.Empty(t, prober.calls)

	clk.Advance(10 * time.Second)

	value, _ = c.TagValueFromDevice(dev, blkid.TagLabel)
	assert.Equal(t, "new", value)
	assert.Len(t, prober.calls, 1)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{
		devices: map[string]cache.Info{
			"/dev/sda1": info(0x801, label("root")),
		},
		errors: map[string]error{},
	}

	c, _ := newCache(t, cache.Config{Probe: prober.probe})

	_, err := c.RefreshDeviceData("/dev/sda1")
	require.NoError(t, err)

	_, err = c.RefreshDeviceData("/dev/sda1")
	require.NoError(t, err)

	assert.Len(t, prober.calls, 2)

	// unreadable devices keep their tags
	prober.errors["/dev/sda1"] = fs.ErrPermission

	d, err := c.RefreshDeviceData("/dev/sda1")
	require.NoError(t, err)
	assert.True(t, d.HasTag(label("root")))

	// devices which are gone are dropped
	prober.errors["/dev/sda1"] = fs.ErrNotExist

	_, err = c.RefreshDeviceData("/dev/sda1")
	assert.ErrorIs(t, err, cache.ErrDeviceNotFound)
	assert.Equal(t, 0, c.Len())

	// nothing found on the device
	delete(prober.errors, "/dev/sda1")
	prober.devices["/dev/sda1"] = cache.Info{}

	_, err = c.RefreshDeviceData("/dev/sda1")
	assert.ErrorIs(t, err, cache.ErrDeviceNotFound)
	assert.Equal(t, 0, c.Len())
}

// system is a fake /dev, /proc/partitions and /sys/block.
type system struct {
	devDir         string
	procPartitions string
	sysBlockDir    string
}

func newSystem(t *testing.T) system {
	t.Helper()

	root := t.TempDir()

	s := system{
		devDir:         filepath.Join(root, "dev"),
		procPartitions: filepath.Join(root, "proc", "partitions"),
		sysBlockDir:    filepath.Join(root, "sys", "block"),
	}

	writeFile(t, s.procPartitions, `major minor  #blocks  name

   8        0   10485760 sda
   8        1     524288 sda1
   8        2          1 sda2
   8        5    1000000 sda5
 253        0    1000000 dm-0
  11        0    1048575 sr0
`)

	for _, dir := range []string{"sda/sda1", "sda/sda2", "sda/sda5", "sr0"} {
		require.NoError(t, os.MkdirAll(filepath.Join(s.sysBlockDir, dir), 0o755))
	}

	writeFile(t, filepath.Join(s.sysBlockDir, "sda", "removable"), "0\n")
	writeFile(t, filepath.Join(s.sysBlockDir, "sr0", "removable"), "1\n")
	writeFile(t, filepath.Join(s.sysBlockDir, "dm-0", "dm", "name"), "vg-root\n")

	for _, dev := range []string{"sda", "sda1", "sda2", "sda5", "dm-0", "mapper/vg-root", "sr0"} {
		touch(t, filepath.Join(s.devDir, dev))
	}

	return s
}

func (s system) dev(name string) string {
	return filepath.Join(s.devDir, name)
}

func (s system) config(prober *fakeProber) cache.Config {
	return cache.Config{
		DevDir:         s.devDir,
		ProcPartitions: s.procPartitions,
		SysBlockDir:    s.sysBlockDir,
		Probe:          prober.probe,
	}
}

func (s system) prober() *fakeProber {
	return &fakeProber{
		devices: map[string]cache.Info{
			s.dev("sda1"):           info(0x801, label("root"), uuidTag("1111")),
			s.dev("mapper/vg-root"): info(0xfd00, label("root"), uuidTag("2222")),
			s.dev("sr0"):            info(0xb00, label("CDROM")),
		},
		errors: map[string]error{},
	}
}

func TestProbeAllDevices(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()

	c, clk := newCache(t, s.config(prober))

	require.NoError(t, c.ProbeAllDevices())

	assert.Equal(t, []string{s.dev("sda1"), s.dev("sda5"), s.dev("mapper/vg-root"), s.dev("sr0")}, prober.calls)
	assert.Equal(t, 3, c.Len())

	d, err := c.LookupDevice(s.dev("mapper/vg-root"), cache.OperationFind)
	require.NoError(t, err)

	assert.Equal(t, cache.PriorityDM, d.Priority())
	assert.Equal(t, uint64(0xfd00), d.DeviceNumber())

	// probed recently
	require.NoError(t, c.ProbeAllDevices())
	assert.Len(t, prober.calls, 4)

	clk.Advance(cache.DefaultProbeInterval)

	require.NoError(t, c.ProbeAllDevices())
	assert.Len(t, prober.calls, 8)
}

func TestProbeAllNewDevices(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()

	c, _ := newCache(t, s.config(prober))

	_, err := c.LookupDevice(s.dev("sda1"), cache.OperationCreate)
	require.NoError(t, err)

	require.NoError(t, c.ProbeAllNewDevices())

	assert.Equal(t, []string{s.dev("sda5"), s.dev("mapper/vg-root"), s.dev("sr0")}, prober.calls)
}

func TestProbeAllRemovableDevices(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()
	path := filepath.Join(t.TempDir(), "blkid.tab")

	cfg := s.config(prober)
	cfg.AutoSaveChangesTo = path

	c, err := cache.New(cfg)
	require.NoError(t, err)

	require.NoError(t, c.ProbeAllRemovableDevices())
	assert.Equal(t, []string{s.dev("sr0")}, prober.calls)

	d, err := c.LookupDevice(s.dev("sr0"), cache.OperationFind)
	require.NoError(t, err)
	assert.True(t, d.Removable())

	_, err = c.RefreshDeviceData(s.dev("sda1"))
	require.NoError(t, err)

	require.NoError(t, c.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(contents), s.dev("sda1"))
	assert.NotContains(t, string(contents), s.dev("sr0"))
}

func TestDiscardChanges(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()

	cfg := s.config(prober)
	cfg.DiscardChangesOnDrop = true

	c, err := cache.New(cfg)
	require.NoError(t, err)

	require.NoError(t, c.ProbeAllDevices())
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Close())

	contents, err := os.ReadFile(os.DevNull)
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestFindDeviceWithTag(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()

	c, _ := newCache(t, s.config(prober))

	// only LABEL and UUID are looked up
	_, ok := c.FindDeviceWithTag(blkid.TagType, "ext4")
	assert.False(t, ok)
	assert.Empty(t, prober.calls)

	// the cache is empty, all devices are probed
	d, ok := c.FindDeviceWithTag(blkid.TagLabel, "root")
	require.True(t, ok)
	assert.Equal(t, s.dev("mapper/vg-root"), d.Name())
	assert.Len(t, prober.calls, 4)

	name, ok := c.FindDeviceNameFromTag(uuidTag("1111"))
	require.True(t, ok)
	assert.Equal(t, s.dev("sda1"), name)
	assert.Len(t, prober.calls, 4)

	_, ok = c.FindDeviceNameFromTag(uuidTag("3333"))
	assert.False(t, ok)
	assert.Len(t, prober.calls, 4)

	// the device changed since it was probed
	prober.devices[s.dev("mapper/vg-root")] = info(0xfd00, label("home"))

	_, err := c.RefreshDeviceData(s.dev("mapper/vg-root"))
	require.NoError(t, err)

	name, ok = c.FindDeviceNameFromTag(label("root"))
	require.True(t, ok)
	assert.Equal(t, s.dev("sda1"), name)
}

func TestFindCanonicalDeviceName(t *testing.T) {
	t.Parallel()

	s := newSystem(t)
	prober := s.prober()

	c, _ := newCache(t, s.config(prober))

	link := filepath.Join(s.devDir, "disk", "by-uuid", "2222")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink("../../dm-0", link))

	name, ok := c.FindCanonicalDeviceNameFromTag(uuidTag("2222"))
	require.True(t, ok)
	assert.Equal(t, s.dev("mapper/vg-root"), name)
	assert.Empty(t, prober.calls)

	// no udev link, found through the cache
	name, ok = c.FindCanonicalDeviceNameFromTag(uuidTag("1111"))
	require.True(t, ok)
	assert.Equal(t, resolve(t, s.dev("sda1")), name)

	name, ok = c.FindCanonicalDeviceNameFromPath(s.dev("dm-0"))
	require.True(t, ok)
	assert.Equal(t, s.dev("mapper/vg-root"), name)

	_, ok = c.FindCanonicalDeviceNameFromPath(s.dev("sdx"))
	assert.False(t, ok)

	_, ok = c.FindCanonicalDeviceNameFromPath("")
	assert.False(t, ok)
}

func TestGarbageCollect(t *testing.T) {
	t.Parallel()

	dev := touch(t, filepath.Join(t.TempDir(), "sda1"))

	c, _ := newCache(t, cache.Config{})

	for _, name := range []string{dev, "/dev/does-not-exist"} {
		_, err := c.LookupDevice(name, cache.OperationCreate)
		require.NoError(t, err)
	}

	it := c.Devices()

	c.GarbageCollect()
	assert.Equal(t, 2, c.Len())

	it.Close()

	c.GarbageCollect()
	assert.Equal(t, 1, c.Len())

	_, err := c.LookupDevice(dev, cache.OperationFind)
	assert.NoError(t, err)
}

func TestGarbageCollectReplacedNodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	same, replaced, plain := touch(t, filepath.Join(dir, "sda1")), touch(t, filepath.Join(dir, "sdb1")), touch(t, filepath.Join(dir, "sdc1"))

	prober := &fakeProber{
		devices: map[string]cache.Info{
			same:     info(0x801, label("root")),
			replaced: info(0x811, label("data")),
			plain:    info(0x821, label("swap")),
		},
	}

	c, _ := newCache(t, cache.Config{Probe: prober.probe})

	cache.SetDeviceNumber(c, func(path string) (uint64, error) {
		switch path {
		case same:
			return 0x801, nil
		case replaced:
			return 0x812, nil
		default:
			return 0, fmt.Errorf("%s: not a block device", path)
		}
	})

	for _, name := range []string{same, replaced, plain} {
		_, err := c.LookupDevice(name, cache.OperationVerify)
		require.NoError(t, err)
	}

	c.GarbageCollect()

	var names []string

	it := c.Devices()

	for d, ok := it.Next(); ok; d, ok = it.Next() {
		names = append(names, d.Name())
	}

	it.Close()

	assert.Equal(t, []string{same}, names)
}

func TestIterators(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{
		devices: map[string]cache.Info{
			"/dev/sdb1": info(0x811, label("data")),
			"/dev/sda1": info(0x801, label("root")),
			"/dev/sdc1": info(0x821, label("data")),
		},
	}

	c, _ := newCache(t, cache.Config{Probe: prober.probe})

	for _, name := range []string{"/dev/sdb1", "/dev/sda1", "/dev/sdc1"} {
		_, err := c.RefreshDeviceData(name)
		require.NoError(t, err)
	}

	names := func(it *cache.DeviceIter) []string {
		var out []string

		for d, ok := it.Next(); ok; d, ok = it.Next() {
			out = append(out, d.Name())
		}

		return out
	}

	it := c.Devices()

	_, err := c.LookupDevice("/dev/sdd1", cache.OperationCreate)
	assert.ErrorIs(t, err, cache.ErrBorrowed)

	assert.ErrorIs(t, c.ProbeAllDevices(), cache.ErrBorrowed)

	// read-only lookups are allowed
	_, err = c.LookupDevice("/dev/sda1", cache.OperationFind)
	assert.NoError(t, err)

	name, ok := c.FindDeviceNameFromTag(label("root"))
	assert.True(t, ok)
	assert.Equal(t, "/dev/sda1", name)

	assert.Equal(t, []string{"/dev/sda1", "/dev/sdb1", "/dev/sdc1"}, names(it))

	it.Close()
	it.Close()

	matching := c.DevicesMatching(label("data"))
	assert.Equal(t, []string{"/dev/sdb1", "/dev/sdc1"}, names(matching))
	matching.Close()

	_, err = c.LookupDevice("/dev/sdd1", cache.OperationCreate)
	assert.NoError(t, err)
}

// resolve returns the path with symlinks in the temporary directory resolved.
func resolve(t *testing.T, path string) string {
	t.Helper()

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	return resolved
}

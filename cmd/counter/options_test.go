package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/counteruci/pkg/engine"
	"github.com/ChizhovVadim/counteruci/pkg/online"
	"github.com/ChizhovVadim/counteruci/pkg/uci"
)

func newTestProtocol(t *testing.T) (*uci.Protocol, *engine.Engine, *bytes.Buffer) {
	t.Helper()
	var eng = engine.NewEngine(zerolog.Nop(), online.NewClient())
	var out = &bytes.Buffer{}
	var syzygyPath string
	var protocol *uci.Protocol
	var options = newOptions(eng, &syzygyPath, func(s string) { protocol.InfoString(s) })
	protocol = uci.New(zerolog.Nop(), name, author, versionName, eng, options, out)
	return protocol, eng, out
}

func TestOptionsAdvertised(t *testing.T) {
	var protocol, _, out = newTestProtocol(t)
	protocol.Handle("uci")
	var s = out.String()
	for _, want := range []string{
		"option name Hash type spin default 16 min 1 max 4096\n",
		"option name SyzygyPath type string default <empty>\n",
		"option name NoobBook type check default false\n",
		"option name NoobBookLimit type spin default 0 min 0 max 1000\n",
		"option name OnlineSyzygy type check default false\n",
		"option name LMRQuietBase type spin default 135 min -100000 max 100000\n",
		"option name AspiScoreDiv type spin default 10000 min 1 max 100000\n",
		"option name Tempo type spin default 15 min -100000 max 100000\n",
		"option name MultiPV type spin default 1 min 1 max 256\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestOptionsChangeEngine(t *testing.T) {
	var protocol, eng, out = newTestProtocol(t)
	var tests = []struct {
		line  string
		check func() bool
	}{
		{"setoption name Hash value 32", func() bool { return eng.Hash == 32 }},
		{"setoption name Hash value 65536", func() bool { return eng.Hash == engine.MaxHash }},
		{"setoption name Threads value 0", func() bool { return eng.Threads == 1 }},
		{"setoption name NoobBookLimit value 12", func() bool { return eng.Config.NoobBookLimit == 12 && !eng.Config.NoobBook }},
		{"setoption name NoobBook value true", func() bool { return eng.Config.NoobBook }},
		{"setoption name OnlineSyzygy value true", func() bool { return eng.Config.OnlineSyzygy }},
		{"setoption name LMRNoisyDiv value 300", func() bool { return eng.Config.LMRNoisyDiv == 3 }},
		{"setoption name AspiScoreDiv value 0", func() bool { return eng.Config.AspiScoreDiv == 1 }},
		{"setoption name rfpbase value 90", func() bool { return eng.Config.RFPBase == 90 }},
		{"setoption name Tempo value -999999", func() bool { return eng.Config.Tempo == -tuneRange }},
	}
	for _, test := range tests {
		protocol.Handle(test.line)
		if !test.check() {
			t.Error(test.line)
		}
	}
	if s := out.String(); s != "" {
		t.Error(s)
	}
}

func TestSyzygyPathOption(t *testing.T) {
	var dir = t.TempDir()
	for _, name := range []string{"KQvK.rtbw", "KRPvKR.rtbw"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var protocol, _, out = newTestProtocol(t)
	protocol.Handle("setoption name SyzygyPath value " + dir)
	if !strings.Contains(out.String(), "info string Syzygy tablebases with up to 5 pieces\n") {
		t.Error(out.String())
	}

	out.Reset()
	protocol.Handle("setoption name SyzygyPath value " + filepath.Join(dir, "missing"))
	if !strings.HasPrefix(out.String(), "info string option SyzygyPath") {
		t.Error(out.String())
	}
	out.Reset()
	protocol.Handle("uci")
	if !strings.Contains(out.String(), "option name SyzygyPath type string default "+dir+"\n") {
		t.Error("failed change replaced the path")
	}
}

func TestNoSuchOption(t *testing.T) {
	var protocol, eng, out = newTestProtocol(t)
	protocol.Handle("setoption name Hashes value 1")
	if out.String() != "info string No such option.\n" || eng.Hash != 16 {
		t.Error(out.String(), eng.Hash)
	}
}

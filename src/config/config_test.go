package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/metavote/src/observation"
)

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()

	conf.SetDataDir("/tmp/metavote")
	if conf.DumpDir != filepath.Join("/tmp/metavote", DefaultDumpFile) {
		t.Fatalf("DumpDir should follow DataDir, got %s", conf.DumpDir)
	}
	if conf.ScenarioFile() != filepath.Join("/tmp/metavote", DefaultScenarioFile) {
		t.Fatalf("unexpected scenario file %s", conf.ScenarioFile())
	}

	conf = NewDefaultConfig()
	conf.DumpDir = "/var/dump"
	conf.SetDataDir("/tmp/metavote")
	if conf.DumpDir != "/var/dump" {
		t.Fatalf("an explicit DumpDir should be kept, got %s", conf.DumpDir)
	}
}

func TestMode(t *testing.T) {
	conf := NewDefaultConfig()
	if m, err := conf.Mode(); err != nil || m != observation.Supermajority {
		t.Fatalf("default mode should be supermajority, got %v %v", m, err)
	}

	conf.ConsensusMode = "single"
	if m, err := conf.Mode(); err != nil || m != observation.Single {
		t.Fatalf("mode should be single, got %v %v", m, err)
	}

	conf.ConsensusMode = "plurality"
	if _, err := conf.Mode(); err == nil {
		t.Fatalf("unknown modes should be rejected")
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.DebugLevel,
	}
	for s, l := range cases {
		if LogLevel(s) != l {
			t.Fatalf("LogLevel(%q) should be %v, not %v", s, l, LogLevel(s))
		}
	}
}

func TestLoggerFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "metavote_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	conf := NewDefaultConfig()
	conf.LogLevel = "info"
	conf.LogFile = filepath.Join(dir, "metavote.log")

	logger := conf.Logger()
	logger.Logger.Out = ioutil.Discard
	logger.WithField("decided", "0XAB").Info("NewElection")
	logger.Debug("filtered")

	data, err := ioutil.ReadFile(conf.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "NewElection") || !strings.Contains(string(data), "metavote") {
		t.Fatalf("log file should contain the entry, got %s", data)
	}
	if strings.Contains(string(data), "filtered") {
		t.Fatalf("debug entries should be filtered at info level")
	}

	if conf.Logger().Logger != logger.Logger {
		t.Fatalf("Logger should be built once")
	}
}

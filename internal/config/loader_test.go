package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mbvera/pulse-data/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New()

		Convey("Then it carries sensible defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.MetricTypes, ShouldResemble, []string{"ALL"})
			So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU()*2)
			So(cfg.QueueSize, ShouldEqual, 10_000)
			So(cfg.PersonLevel, ShouldBeFalse)
		})
	})
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults survive", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.JobName, ShouldEqual, "recidivism-calculations")
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PULSE_ADDR", ":8088")
	t.Setenv("PULSE_LOG_LEVEL", "debug")
	t.Setenv("PULSE_WORKER_COUNT", "7")
	t.Setenv("PULSE_STATE_CODE", "US_ND")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8088")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.WorkerCount, ShouldEqual, 7)
			So(cfg.StateCode, ShouldEqual, "US_ND")
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("input_path: /data/persons.jsonl\ncalculation_end_month: \"2009-12\"\nmetric_types:\n  - REINCARCERATION_RATE\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PULSE_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.InputPath, ShouldEqual, "/data/persons.jsonl")
			So(cfg.CalculationEndMonth, ShouldEqual, "2009-12")
			So(cfg.MetricTypes, ShouldResemble, []string{"REINCARCERATION_RATE"})
			So(cfg.Addr, ShouldEqual, ":9090")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PULSE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("Given a config file path that does not exist", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with a load error", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestLoadPersonLevelValidation(t *testing.T) {
	t.Setenv("PULSE_PERSON_LEVEL", "true")

	Convey("Given person-level output without an external id type", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then validation rejects the configuration", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestLoadPersonLevelWithIDType(t *testing.T) {
	t.Setenv("PULSE_PERSON_LEVEL", "true")
	t.Setenv("PULSE_EXTERNAL_ID_TYPE", "US_ND_SID")

	Convey("Given person-level output with an external id type", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the configuration is accepted", func() {
			So(err, ShouldBeNil)
			So(cfg.PersonLevel, ShouldBeTrue)
			So(cfg.ExternalIDType, ShouldEqual, "US_ND_SID")
		})
	})
}

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/upskillhq/portfolio-engine/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the defaults load", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.NotifyQueueSize, ShouldEqual, 10_000)
			So(cfg.DedupeSize, ShouldEqual, 50_000)
			So(cfg.AutoCreateScore, ShouldEqual, 85)
			So(cfg.AutoApproveScore, ShouldEqual, 90)
			So(cfg.PublishScore, ShouldEqual, 7.0)
			So(cfg.MarketplaceHealthMin, ShouldEqual, 3.0)
			So(cfg.MaxRankingsLimit, ShouldEqual, 100)
			So(cfg.SQLitePath, ShouldEqual, "")
			So(cfg.NotificationURL, ShouldEqual, "")
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("PORTFOLIO_ADDR", ":7000")
		t.Setenv("PORTFOLIO_LOG_LEVEL", "debug")
		t.Setenv("PORTFOLIO_QUEUE_SIZE", "256")
		t.Setenv("PORTFOLIO_AUTO_CREATE_SCORE", "70")
		t.Setenv("PORTFOLIO_AUTO_APPROVE_SCORE", "80")
		t.Setenv("PORTFOLIO_NOTIFICATION_URL", "http://notify.internal/hook")

		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7000")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.NotifyQueueSize, ShouldEqual, 256)
			So(cfg.AutoCreateScore, ShouldEqual, 70)
			So(cfg.AutoApproveScore, ShouldEqual, 80)
			So(cfg.NotificationURL, ShouldEqual, "http://notify.internal/hook")

			Convey("And untouched fields keep their defaults", func() {
				So(cfg.PublishScore, ShouldEqual, 7.0)
				So(cfg.MaxRankingsLimit, ShouldEqual, 100)
			})
		})
	})
}

func TestLoadConfigFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "portfolio.yaml")
		So(os.WriteFile(path, []byte(
			"addr: \":8088\"\npublish_score: 6.5\nsqlite_path: /tmp/portfolio.db\n",
		), 0o600), ShouldBeNil)
		t.Setenv("PORTFOLIO_CONFIG", path)

		Convey("When only the file overrides", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8088")
				So(cfg.PublishScore, ShouldEqual, 6.5)
				So(cfg.SQLitePath, ShouldEqual, "/tmp/portfolio.db")
				So(cfg.AutoCreateScore, ShouldEqual, 85)
			})
		})

		Convey("When env and file both override the same key", func() {
			t.Setenv("PORTFOLIO_ADDR", ":9999")
			cfg, err := config.Load(context.Background())

			Convey("Then env wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9999")
				So(cfg.PublishScore, ShouldEqual, 6.5)
			})
		})

		Convey("When the file does not exist", func() {
			t.Setenv("PORTFOLIO_CONFIG", filepath.Join(dir, "missing.yaml"))
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given overrides that break the constraints", t, func() {
		Convey("When the listen address is cleared", func() {
			t.Setenv("PORTFOLIO_ADDR", "")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When a score leaves its range", func() {
			t.Setenv("PORTFOLIO_AUTO_CREATE_SCORE", "150")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When auto-approve sits below auto-create", func() {
			t.Setenv("PORTFOLIO_AUTO_CREATE_SCORE", "80")
			t.Setenv("PORTFOLIO_AUTO_APPROVE_SCORE", "60")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When the publish score is out of range", func() {
			t.Setenv("PORTFOLIO_PUBLISH_SCORE", "11")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}

package skills_test

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/internal/domain/skills"
)

func TestExtract(t *testing.T) {
	Convey("Given the skill extractor", t, func() {
		Convey("When text mentions known vocabulary", func() {
			tags := skills.Extract("Built a Python scraper and hardened a Linux box", nil, nil)

			Convey("Then canonical forms come back", func() {
				So(tags, ShouldContain, "Python")
				So(tags, ShouldContain, "Linux")
			})
		})

		Convey("When a phrase contains a shorter keyword", func() {
			tags := skills.Extract("SQL injection lab write-up", nil, nil)

			Convey("Then the longer phrase wins without dropping the base tag", func() {
				So(tags, ShouldContain, "SQL Injection")
				So(tags, ShouldContain, "SQL")
			})
		})

		Convey("When text carries hashtags", func() {
			tags := skills.Extract("wrapped up the lab #forensics #OSINT", nil, nil)

			So(tags, ShouldContain, "Forensics")
			So(tags, ShouldContain, "OSINT")
		})

		Convey("When text carries label lines", func() {
			tags := skills.Extract("Skills: rust, embedded systems\nTools: ghidra", nil, nil)

			So(tags, ShouldContain, "Rust")
			So(tags, ShouldContain, "Embedded Systems")
			So(tags, ShouldContain, "Ghidra")
		})

		Convey("When evidence files carry language extensions", func() {
			evidence := []model.EvidenceFile{
				{URL: "https://files.example/exploit.py", Kind: "code", Name: "exploit.py"},
				{URL: "https://files.example/server.go", Kind: "code"},
			}
			tags := skills.Extract("", evidence, nil)

			So(tags, ShouldContain, "Python")
			So(tags, ShouldContain, "Go")
		})

		Convey("When explicit tags duplicate inferred ones", func() {
			tags := skills.Extract("docker deployment notes", nil, []string{"Docker", "CI/CD"})

			Convey("Then the list is deduplicated case-insensitively", func() {
				count := 0
				for _, tag := range tags {
					if strings.EqualFold(tag, "docker") {
						count++
					}
				}
				So(count, ShouldEqual, 1)
				So(tags[0], ShouldEqual, "Docker") // explicit tags keep ordering priority
			})
		})

		Convey("When input would produce more than the cap", func() {
			explicit := []string{
				"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta",
				"theta", "iota", "kappa", "lambda", "mu", "nu", "xi", "omicron",
				"pi", "rho",
			}
			tags := skills.Extract("python docker kubernetes linux", nil, explicit)

			Convey("Then the result is capped at 15", func() {
				So(len(tags), ShouldEqual, 15)
			})
		})

		Convey("When input is empty or junk", func() {
			So(skills.Extract("", nil, nil), ShouldBeEmpty)
			So(skills.Extract("   \n\t  ", nil, nil), ShouldBeEmpty)
			So(skills.Extract("## # ###", nil, nil), ShouldBeEmpty)
		})

		Convey("When input is adversarial", func() {
			Convey("Then huge and odd input never panics", func() {
				So(func() {
					skills.Extract(strings.Repeat("x#", 100000), nil, nil)
					skills.Extract("label::::value", nil, []string{"", "  "})
					skills.Extract("\x00\xff", []model.EvidenceFile{{URL: "..", Name: "."}}, nil)
				}, ShouldNotPanic)
			})
		})
	})
}

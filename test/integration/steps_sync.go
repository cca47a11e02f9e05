package integration

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cucumber/godog"
)

// registerSyncSteps wires the guild, platform and synchronization
// step definitions.
func (s *StepsContext) registerSyncSteps(sc *godog.ScenarioContext) {
	// Platform state
	sc.Step(`^a guild "([^"]*)" with roles "([^"]*)"$`, s.aGuildWithRoles)
	sc.Step(`^member "([^"]*)" is in guild "([^"]*)" with roles "([^"]*)"$`, s.memberIsInGuildWithRoles)
	sc.Step(`^member "([^"]*)" is in guild "([^"]*)" with no roles$`, s.memberIsInGuildWithNoRoles)

	// Configuration
	sc.Step(`^guild "([^"]*)" has the configuration:$`, s.guildHasConfiguration)
	sc.Step(`^I apply the following configuration to guild "([^"]*)" as a dry run:$`, s.iApplyConfigurationDryRun)
	sc.Step(`^the response should indicate dry-run mode$`, s.theResponseShouldIndicateDryRunMode)

	// Synchronization
	sc.Step(`^I sync member "([^"]*)" in guild "([^"]*)"$`, s.iSyncMemberInGuild)
	sc.Step(`^I sync guild "([^"]*)"$`, s.iSyncGuild)
	sc.Step(`^the sync outcome should be "([^"]*)"$`, s.theSyncOutcomeShouldBe)
	sc.Step(`^the bulk sync should report (\d+) synced and (\d+) skipped$`, s.theBulkSyncShouldReport)

	// Platform assertions
	sc.Step(`^member "([^"]*)" in guild "([^"]*)" should have exactly roles "([^"]*)"$`, s.memberShouldHaveExactlyRoles)
}

// Platform state steps

func (s *StepsContext) aGuildWithRoles(guildID, roleList string) error {
	s.tc.Platform.AddGuild(guildID, splitList(roleList)...)
	return nil
}

func (s *StepsContext) memberIsInGuildWithRoles(memberID, guildID, roleList string) error {
	s.tc.Platform.AddMember(guildID, memberID, splitList(roleList)...)
	return nil
}

func (s *StepsContext) memberIsInGuildWithNoRoles(memberID, guildID string) error {
	s.tc.Platform.AddMember(guildID, memberID)
	return nil
}

// Configuration steps

func (s *StepsContext) guildHasConfiguration(guildID string, doc *godog.DocString) error {
	if err := s.request(http.MethodPut, "/guilds/"+guildID+"/configuration", strings.NewReader(doc.Content)); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

func (s *StepsContext) iApplyConfigurationDryRun(guildID string, doc *godog.DocString) error {
	return s.request(http.MethodPut, "/guilds/"+guildID+"/configuration?dry_run=true", strings.NewReader(doc.Content))
}

func (s *StepsContext) theResponseShouldIndicateDryRunMode() error {
	var result struct {
		DryRun bool `json:"dry_run"`
	}
	if err := s.responseJSON(&result); err != nil {
		return err
	}
	if !result.DryRun {
		return fmt.Errorf("expected dry-run response, got: %s", s.responseBody)
	}
	return nil
}

// Synchronization steps

func (s *StepsContext) iSyncMemberInGuild(memberID, guildID string) error {
	return s.request(http.MethodPost, "/guilds/"+guildID+"/members/"+memberID+"/sync", nil)
}

func (s *StepsContext) iSyncGuild(guildID string) error {
	return s.request(http.MethodPost, "/guilds/"+guildID+"/sync", nil)
}

func (s *StepsContext) theSyncOutcomeShouldBe(outcome string) error {
	var result struct {
		Outcome string `json:"outcome"`
	}
	if err := s.responseJSON(&result); err != nil {
		return err
	}
	if result.Outcome != outcome {
		return fmt.Errorf("expected outcome %q, got %q (body: %s)", outcome, result.Outcome, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theBulkSyncShouldReport(synced, skipped int) error {
	var result struct {
		Synced  int `json:"synced"`
		Skipped int `json:"skipped"`
	}
	if err := s.responseJSON(&result); err != nil {
		return err
	}
	if result.Synced != synced || result.Skipped != skipped {
		return fmt.Errorf("expected %d synced and %d skipped, got: %s", synced, skipped, s.responseBody)
	}
	return nil
}

// Platform assertion steps

func (s *StepsContext) memberShouldHaveExactlyRoles(memberID, guildID, roleList string) error {
	want := splitList(roleList)
	got := s.tc.Platform.MemberRoleIDs(guildID, memberID)
	if got == nil {
		return fmt.Errorf("member %s is not in guild %s", memberID, guildID)
	}

	sort.Strings(want)
	sort.Strings(got)
	if len(want) != len(got) {
		return fmt.Errorf("expected roles %v, got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("expected roles %v, got %v", want, got)
		}
	}
	return nil
}

// splitList turns `"a, b, c"` into its items, empty on blank input.
func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

package catalogmanager

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/pkg/api"
	"github.com/rs/zerolog/log"
)

// Compatibility issue severities. Publish blocks on errors, warnings are
// advisory.
const (
	CompatSeverityError   = "error"
	CompatSeverityWarning = "warning"
)

// psuHeadroomRatio is the load fraction above which the check warns even
// when the supply covers the summed draw.
const psuHeadroomRatio = 0.8

// compatRule is one check over the resolved part list. A rule only fires
// when both sides of its comparison are known; unknown specs never produce
// issues.
type compatRule struct {
	name  string
	check func(lines []compatLine) []api.CompatIssue
}

type compatLine struct {
	part     *models.Part
	quantity int
}

var compatRules = []compatRule{
	{name: "cpu_socket", check: checkCPUSocket},
	{name: "psu_wattage", check: checkPSUWattage},
	{name: "m2_slots", check: checkM2Slots},
}

// CheckCompat runs the compatibility rules over the build's part list.
// Lines whose part no longer exists are skipped; the publish gate reports
// those separately.
func (bm *buildManager) CheckCompat(ctx context.Context) (*api.CompatReport, apperrors.Error) {
	lines, err := bm.resolveCompatLines(ctx)
	if err != nil {
		return nil, err
	}

	report := &api.CompatReport{
		BuildID: bm.build.BuildID.String(),
		Issues:  []api.CompatIssue{},
	}
	for _, rule := range compatRules {
		for _, issue := range rule.check(lines) {
			issue.Rule = rule.name
			report.Issues = append(report.Issues, issue)
		}
	}
	report.Clean = len(report.Issues) == 0
	return report, nil
}

func (bm *buildManager) resolveCompatLines(ctx context.Context) ([]compatLine, apperrors.Error) {
	lines := make([]compatLine, 0, len(bm.build.Parts))
	for _, bp := range bm.build.Parts {
		part, err := db.DB(ctx).GetPart(ctx, bp.PartID)
		if err != nil {
			if errors.Is(err, dberror.ErrNotFound) {
				continue
			}
			log.Ctx(ctx).Error().Err(err).Str("part_id", bp.PartID).Msg("failed to load part for compatibility check")
			return nil, ErrUnableToLoadObject.Err(err)
		}
		lines = append(lines, compatLine{part: part, quantity: bp.Quantity})
	}
	return lines, nil
}

func checkCPUSocket(lines []compatLine) []api.CompatIssue {
	var issues []api.CompatIssue
	for _, cpu := range linesOf(lines, catcommon.CategoryCPU) {
		cpuSocket := specString(cpu.part.Specs["socket"])
		if cpuSocket == "" {
			continue
		}
		for _, board := range linesOf(lines, catcommon.CategoryMotherboard) {
			boardSocket := specString(board.part.Specs["socket"])
			if boardSocket == "" {
				continue
			}
			if !strings.EqualFold(cpuSocket, boardSocket) {
				issues = append(issues, api.CompatIssue{
					Severity: CompatSeverityError,
					Message:  fmt.Sprintf("cpu socket %s does not match motherboard socket %s", cpuSocket, boardSocket),
				})
			}
		}
	}
	return issues
}

// checkPSUWattage compares the summed component draw against the supply.
// The PSU's capacity comes from its wattage spec, falling back to tdp when
// a source filed it there.
func checkPSUWattage(lines []compatLine) []api.CompatIssue {
	totalDraw := 0
	for _, line := range lines {
		if line.part.Category == catcommon.CategoryPSU {
			continue
		}
		if watts, ok := specWatts(line.part.Specs["tdp"]); ok {
			totalDraw += watts * line.quantity
		}
	}
	if totalDraw == 0 {
		return nil
	}

	var issues []api.CompatIssue
	for _, psu := range linesOf(lines, catcommon.CategoryPSU) {
		capacity, ok := specWatts(psu.part.Specs["wattage"])
		if !ok {
			capacity, ok = specWatts(psu.part.Specs["tdp"])
		}
		if !ok || capacity == 0 {
			continue
		}
		switch {
		case totalDraw > capacity:
			issues = append(issues, api.CompatIssue{
				Severity: CompatSeverityError,
				Message:  fmt.Sprintf("component draw %dW exceeds the %dW power supply", totalDraw, capacity),
			})
		case float64(totalDraw) > float64(capacity)*psuHeadroomRatio:
			issues = append(issues, api.CompatIssue{
				Severity: CompatSeverityWarning,
				Message:  fmt.Sprintf("component draw %dW leaves little headroom on the %dW power supply", totalDraw, capacity),
			})
		}
	}
	return issues
}

func checkM2Slots(lines []compatLine) []api.CompatIssue {
	nvmeDrives := 0
	for _, drive := range linesOf(lines, catcommon.CategoryStorage) {
		if isNvme, ok := drive.part.Specs["isNvme"].(bool); ok && isNvme {
			nvmeDrives += drive.quantity
		}
	}
	if nvmeDrives == 0 {
		return nil
	}

	var issues []api.CompatIssue
	for _, board := range linesOf(lines, catcommon.CategoryMotherboard) {
		slots, ok := specInt(board.part.Specs["m2_slots"])
		if !ok {
			continue
		}
		if slots == 0 {
			issues = append(issues, api.CompatIssue{
				Severity: CompatSeverityError,
				Message:  "build includes an NVMe drive but the motherboard has no M.2 slots",
			})
		}
	}
	return issues
}

func linesOf(lines []compatLine, category string) []compatLine {
	var result []compatLine
	for _, line := range lines {
		if line.part.Category == category {
			result = append(result, line)
		}
	}
	return result
}

var digitsPattern = regexp.MustCompile(`[0-9]+`)

// specString returns a spec value as a trimmed string, or "" when the value
// is absent or not a string.
func specString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// specWatts reads a wattage-like spec value. Source rows store these as
// strings such as "105 W" or "650W"; values merged by an admin or decoded
// from a JSON column may be numeric.
func specWatts(v any) (int, bool) {
	switch val := v.(type) {
	case string:
		m := digitsPattern.FindString(val)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int(val), true
	case int:
		return val, true
	}
	return 0, false
}

// specInt reads an integer spec value, accepting the same encodings as
// specWatts.
func specInt(v any) (int, bool) {
	return specWatts(v)
}

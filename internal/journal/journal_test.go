package journal

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/internal/settings"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/mathutil"
)

func sampleRaw() rawdata.JournalRawData {
	embargo := 12
	return rawdata.JournalRawData{
		ISSNL:          "1111-1111",
		Title:          "Sample Journal",
		DownloadsByAge: mathutil.Series{420, 190, 120, 85, 70},
		DownloadsTotal: 1500,
		CounterTotal:   1800,
		ListPrice:      2000,
		EmbargoMonths:  &embargo,
		Citations:      map[int]float64{2015: 8, 2016: 9, 2017: 10, 2018: 11, 2019: 12},
		Authorships:    map[int]float64{2016: 1, 2018: 2},
		Papers:         map[int]float64{2014: 100, 2015: 104, 2016: 108, 2017: 111, 2018: 115},
		Papers2018:     115,
		OA: map[rawdata.OAVariant]rawdata.OACounts{
			rawdata.WithSubmittedWithBronze: {
				rawdata.OAGreen:  {2015: 12, 2016: 14, 2017: 15, 2018: 18, 2019: 20},
				rawdata.OAHybrid: {2017: 3, 2018: 4, 2019: 5},
				rawdata.OABronze: {2015: 6, 2016: 6, 2017: 7, 2018: 7, 2019: 8},
			},
			rawdata.NoSubmittedWithBronze: {
				rawdata.OAGreen:  {2015: 5, 2016: 6, 2017: 7, 2018: 8, 2019: 9},
				rawdata.OABronze: {2015: 6, 2016: 6, 2017: 7, 2018: 7, 2019: 8},
			},
		},
		SocialNetworkMultiplier: 0.12,
	}
}

func mustSettings(t *testing.T, overrides map[string]any) *settings.Settings {
	t.Helper()
	s, err := settings.New(overrides)
	if err != nil {
		t.Fatalf("settings.New() error = %v", err)
	}
	return s
}

func TestChannelsPartitionTotals(t *testing.T) {
	scenarios := []struct {
		name      string
		overrides map[string]any
	}{
		{"Defaults", nil},
		{"Free channels excluded", map[string]any{
			settings.KeyIncludeBackfile:       false,
			settings.KeyIncludeSocialNetworks: false,
			settings.KeyIncludeBronze:         false,
		}},
		{"High ILL rate", map[string]any{settings.KeyILLRequestPercentOfDelayed: 60}},
		{"Heavy weights", map[string]any{settings.KeyWeightCitation: 200, settings.KeyWeightAuthorship: 1000}},
	}

	for _, sc := range scenarios {
		for _, subscribed := range []bool{false, true} {
			j := New(sampleRaw(), mustSettings(t, sc.overrides), "1111-1111")
			if subscribed {
				j.Subscribe()
			}

			checkPartition(t, sc.name, "downloads", j.DownloadsActualByYear(), j.DownloadsTotalByYear(), subscribed)
			checkPartition(t, sc.name, "usage", j.UseActualByYear(), j.UseTotalByYear(), subscribed)
		}
	}
}

func checkPartition(t *testing.T, scenario, kind string, actual ChannelSeries, total mathutil.Series, subscribed bool) {
	t.Helper()
	sum := actual.Total()
	for year := range total {
		if !mathutil.WithinRelative(sum[year], total[year], constants.RelativeTolerance) {
			t.Errorf("%s %s year %d subscribed=%v: channels sum to %v, total %v",
				scenario, kind, year, subscribed, sum[year], total[year])
		}
		for _, c := range Channels {
			if actual[c][year] < 0 {
				t.Errorf("%s %s channel %s year %d is negative: %v", scenario, kind, c, year, actual[c][year])
			}
		}

		paywalled := total[year] - actual[ChannelOA][year] - actual[ChannelSocialNetworks][year] - actual[ChannelBackfile][year]
		if subscribed {
			if actual[ChannelILL][year] != 0 || actual[ChannelOtherDelayed][year] != 0 {
				t.Errorf("%s %s year %d: delayed channels must be exactly zero when subscribed", scenario, kind, year)
			}
			if !mathutil.WithinRelative(actual[ChannelSubscription][year], paywalled, constants.RelativeTolerance) {
				t.Errorf("%s %s year %d: subscription %v != paywalled %v",
					scenario, kind, year, actual[ChannelSubscription][year], paywalled)
			}
		} else {
			if actual[ChannelSubscription][year] != 0 {
				t.Errorf("%s %s year %d: subscription must be exactly zero when unsubscribed", scenario, kind, year)
			}
			delayed := actual[ChannelILL][year] + actual[ChannelOtherDelayed][year]
			if !mathutil.WithinRelative(delayed, paywalled, constants.RelativeTolerance) {
				t.Errorf("%s %s year %d: ILL + other delayed %v != paywalled %v", scenario, kind, year, delayed, paywalled)
			}
		}
	}
}

type independentSnapshot struct {
	DownloadsByAge  mathutil.Series
	DownloadsTotal  mathutil.Series
	DownloadsByChan ChannelSeries
	UseByChan       ChannelSeries
	UseTotal        float64
	NumCitations    float64
	NumAuthorships  float64
	OA              OABreakdown
	CostSub         float64
	CostILL         float64
	NCPPU           *float64
	Diagnostics     Diagnostics
}

func snapshot(j *Journal) independentSnapshot {
	return independentSnapshot{
		DownloadsByAge:  j.DownloadsByAge(),
		DownloadsTotal:  j.DownloadsTotalByYear(),
		DownloadsByChan: j.DownloadsByChannel(),
		UseByChan:       j.UseByChannel(),
		UseTotal:        j.UseTotal(),
		NumCitations:    j.NumCitations(),
		NumAuthorships:  j.NumAuthorships(),
		OA:              j.OABreakdown(),
		CostSub:         j.CostSubscription(),
		CostILL:         j.CostILL(),
		NCPPU:           j.NCPPU(),
		Diagnostics:     j.Diagnostics(),
	}
}

func TestToggleEvictsOnlySubscriptionDependentFields(t *testing.T) {
	j := New(sampleRaw(), settings.Default(), "1111-1111")
	j.Warm()
	j.UseInstantPercentByYear()
	j.CostActualByYear()
	j.CostActual()
	j.DownloadsActual()
	j.UseActual()
	before := snapshot(j)

	var cachedIndependent []field
	for f := field(0); f < numFields; f++ {
		if j.cache.Has(f) && !f.dependsOnSubscription() {
			cachedIndependent = append(cachedIndependent, f)
		}
	}
	if len(cachedIndependent) == 0 {
		t.Fatalf("expected warm journal to hold independent values")
	}

	j.Subscribe()
	for f := field(0); f < numFields; f++ {
		if f.dependsOnSubscription() && j.cache.Has(f) {
			t.Errorf("field %s survived Subscribe", f)
		}
	}
	for _, f := range cachedIndependent {
		if !j.cache.Has(f) {
			t.Errorf("independent field %s was evicted by Subscribe", f)
		}
	}

	j.CostActual()
	j.Unsubscribe()
	after := snapshot(j)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("independent values changed across a toggle (-before +after):\n%s", diff)
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	once := New(sampleRaw(), settings.Default(), "1111-1111")
	once.Subscribe()

	twice := New(sampleRaw(), settings.Default(), "1111-1111")
	twice.Subscribe()
	twice.Subscribe()

	if !twice.Subscribed() {
		t.Fatalf("expected journal to be subscribed")
	}
	if once.CostActual() != twice.CostActual() {
		t.Errorf("CostActual differs: %v vs %v", once.CostActual(), twice.CostActual())
	}
	if diff := cmp.Diff(once.UseActualByYear(), twice.UseActualByYear()); diff != "" {
		t.Errorf("UseActualByYear differs (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.UseInstantPercentByYear(), twice.UseInstantPercentByYear()); diff != "" {
		t.Errorf("UseInstantPercentByYear differs (-once +twice):\n%s", diff)
	}
}

func TestCostActualFollowsSubscription(t *testing.T) {
	j := New(sampleRaw(), settings.Default(), "1111-1111")
	if j.CostActual() != j.CostILL() {
		t.Errorf("unsubscribed CostActual = %v, expected ILL cost %v", j.CostActual(), j.CostILL())
	}
	if rev := j.Revision(); rev != 0 {
		t.Errorf("new journal revision = %d", rev)
	}

	j.Subscribe()
	if j.CostActual() != j.CostSubscription() {
		t.Errorf("subscribed CostActual = %v, expected subscription cost %v", j.CostActual(), j.CostSubscription())
	}
	if j.CostActualByYear() != j.CostSubscriptionByYear() {
		t.Errorf("subscribed CostActualByYear = %v", j.CostActualByYear())
	}
	if j.Revision() != 1 {
		t.Errorf("expected revision 1 after Subscribe, got %d", j.Revision())
	}
	if j.UseInstant() < j.UseFreeInstant() {
		t.Errorf("subscribed instant use %v below free instant use %v", j.UseInstant(), j.UseFreeInstant())
	}
}

func TestUsageMonotonicInWeights(t *testing.T) {
	weights := []float64{0, 1, 10, 100, 1000}
	previous := -1.0
	for _, w := range weights {
		s := mustSettings(t, map[string]any{
			settings.KeyWeightCitation:   w,
			settings.KeyWeightAuthorship: w * 2,
		})
		j := New(sampleRaw(), s, "1111-1111")
		if j.UseTotal() < previous {
			t.Errorf("usage total decreased to %v at weight %v (previous %v)", j.UseTotal(), w, previous)
		}
		previous = j.UseTotal()
	}
}

func TestDefaultDownloadCurveFallback(t *testing.T) {
	raw := rawdata.JournalRawData{
		DownloadsByAge: mathutil.Series{100, 400, 100, 400, 100},
		DownloadsTotal: 1000,
		CounterTotal:   2000,
		Papers2018:     50,
	}
	j := New(raw, settings.Default(), "2222-2222")

	if !j.Diagnostics().UsedDefaultDownloadCurve {
		t.Fatalf("expected default download curve for alternating data, diagnostics %+v", j.Diagnostics())
	}
	mult := j.CounterMultiplier()
	if mult != 2 {
		t.Fatalf("CounterMultiplier() = %v, expected 2", mult)
	}
	var expected mathutil.Series
	for age, share := range constants.DefaultDownloadCurve {
		expected[age] = share * 1100 * mult
	}
	if got := j.DownloadsByAge(); got != expected {
		t.Errorf("DownloadsByAge() = %v, expected %v", got, expected)
	}
}

func TestGoodDownloadFitIsUsed(t *testing.T) {
	raw := sampleRaw()
	for age := range raw.DownloadsByAge {
		raw.DownloadsByAge[age] = 40 + 600*math.Exp(float64(age)/-1.2)
	}
	j := New(raw, settings.Default(), "1111-1111")
	if j.Diagnostics().UsedDefaultDownloadCurve {
		t.Errorf("expected fitted curve for exponential data, diagnostics %+v", j.Diagnostics())
	}
}

func TestMissingRawDataDefaults(t *testing.T) {
	j := New(rawdata.JournalRawData{}, settings.Default(), "0000-0000")

	if j.NCPPU() != nil {
		t.Errorf("expected nil NCPPU without paywalled usage, got %v", *j.NCPPU())
	}
	if j.OldSchoolCPU() != nil {
		t.Errorf("expected nil old school CPU without downloads")
	}
	if j.UseTotal() != constants.MinUseTotal {
		t.Errorf("UseTotal() = %v, expected floor %v", j.UseTotal(), constants.MinUseTotal)
	}
	if j.UseWeightMultiplier() != 1 {
		t.Errorf("UseWeightMultiplier() = %v, expected 1", j.UseWeightMultiplier())
	}
	if j.CostSubscription() != 0 || j.CostILL() != 0 {
		t.Errorf("expected zero costs, got %v / %v", j.CostSubscription(), j.CostILL())
	}
	if j.EmbargoMonths() != nil {
		t.Errorf("expected nil embargo")
	}
	for year, p := range j.UseInstantPercentByYear() {
		if p != nil {
			t.Errorf("year %d instant percent = %v, expected nil with zero usage", year, *p)
		}
	}
	if j.Growth() != (mathutil.Series{}) {
		t.Errorf("expected zero growth without papers, got %v", j.Growth())
	}
	if !j.IsSociety() {
		t.Errorf("expected society default true")
	}
}

func TestCostSubscriptionCompounds(t *testing.T) {
	raw := rawdata.JournalRawData{ListPrice: 1000}
	j := New(raw, settings.Default(), "3333-3333")
	expected := mathutil.Series{1000, 1080, 1166, 1260, 1360}
	if got := j.CostSubscriptionByYear(); got != expected {
		t.Errorf("CostSubscriptionByYear() = %v, expected %v", got, expected)
	}
	if got := j.CostSubscription(); got != 1173.2 {
		t.Errorf("CostSubscription() = %v, expected 1173.2", got)
	}

	withFee := New(raw, mustSettings(t, map[string]any{settings.KeyCostContentFeePercent: 10}), "3333-3333")
	if got := withFee.CostSubscriptionByYear()[0]; got != 1100 {
		t.Errorf("content fee base price = %v, expected 1100", got)
	}
}

func TestNCPPU(t *testing.T) {
	s := mustSettings(t, map[string]any{
		settings.KeyIncludeBackfile:       false,
		settings.KeyIncludeSocialNetworks: false,
		settings.KeyWeightCitation:        0,
		settings.KeyWeightAuthorship:      0,
	})
	raw := rawdata.JournalRawData{
		DownloadsByAge: mathutil.Series{400, 200, 100, 50, 25},
		DownloadsTotal: 1000,
		CounterTotal:   1000,
		ListPrice:      1000,
		Papers2018:     100,
	}
	j := New(raw, s, "4444-4444")

	if j.DownloadsTotal() != 1000 {
		t.Fatalf("DownloadsTotal() = %v, expected 1000", j.DownloadsTotal())
	}
	if j.CostILL() != 250 {
		t.Errorf("CostILL() = %v, expected 250", j.CostILL())
	}
	ncppu := j.NCPPU()
	if ncppu == nil {
		t.Fatalf("expected NCPPU to be defined")
	}
	if want := mathutil.RoundTo((1173.2-250)/1000, 6); *ncppu != want {
		t.Errorf("NCPPU() = %v, expected %v", *ncppu, want)
	}
	if cpu := j.OldSchoolCPU(); cpu == nil || *cpu != mathutil.RoundTo(1173.2/1000, 6) {
		t.Errorf("OldSchoolCPU() = %v", cpu)
	}
}

func TestOABreakdownRespectsEmbargo(t *testing.T) {
	j := New(sampleRaw(), settings.Default(), "1111-1111")
	oa := j.OABreakdown()

	// 12 month embargo zeroes bronze at age 0 only.
	if want := mathutil.Round4((6 + 7 + 7 + 8) / 5.0); oa.Bronze.Papers != want {
		t.Errorf("bronze papers = %v, expected %v", oa.Bronze.Papers, want)
	}
	if oa.Green.Papers != mathutil.Round4((12+14+15+18+20)/5.0) {
		t.Errorf("green papers = %v", oa.Green.Papers)
	}
	if oa.PeerReviewed.Papers != mathutil.Round4((11+12+14+15+17)/5.0) {
		t.Errorf("peer reviewed papers = %v", oa.PeerReviewed.Papers)
	}
	if oa.Green.Usage < oa.Green.Downloads {
		t.Errorf("green usage %v below downloads %v with positive weights", oa.Green.Usage, oa.Green.Downloads)
	}
}

func TestParseChannel(t *testing.T) {
	for _, c := range Channels {
		parsed, err := ParseChannel(c.String())
		if err != nil || parsed != c {
			t.Errorf("ParseChannel(%q) = %v, %v", c.String(), parsed, err)
		}
	}
	if _, err := ParseChannel("carrier_pigeon"); err == nil {
		t.Errorf("expected error for unknown channel")
	}
}

// alternatingRaw forces the default download curve: observed downloads sum
// to 1100, COUNTER doubles them and papers hold steady at 50 with growth 1.
func alternatingRaw() rawdata.JournalRawData {
	return rawdata.JournalRawData{
		DownloadsByAge: mathutil.Series{100, 400, 100, 400, 100},
		DownloadsTotal: 1000,
		CounterTotal:   2000,
		Papers2018:     50,
	}
}

func TestBackfileByYear(t *testing.T) {
	j := New(alternatingRaw(), settings.Default(), "5555-5555")
	if !j.Diagnostics().UsedDefaultDownloadCurve {
		t.Fatalf("expected default download curve, diagnostics %+v", j.Diagnostics())
	}

	// byAge = share * 2200, older = 2000 - 0.736638*2200 = 379.3964. Each year
	// takes half its own age plus every older age, then older.
	tests := []struct {
		year int
		want float64
	}{
		{year: 0, want: (0.5*0.371269+0.137739+0.095896+0.072885+0.058849)*2200 + 379.3964},
		{year: 1, want: (0.5*0.137739+0.095896+0.072885+0.058849)*2200 + 379.3964},
		{year: 2, want: (0.5*0.095896+0.072885+0.058849)*2200 + 379.3964},
		{year: 3, want: (0.5*0.072885+0.058849)*2200 + 379.3964},
		{year: 4, want: 0.5*0.058849*2200 + 379.3964},
	}

	backfile := j.Downloads(ChannelBackfile)
	for _, tt := range tests {
		if !mathutil.WithinTolerance(backfile[tt.year], tt.want, 1e-6) {
			t.Errorf("backfile year %d = %v, expected %v", tt.year, backfile[tt.year], tt.want)
		}
	}
	if got := j.Downloads(ChannelOA); got != (mathutil.Series{}) {
		t.Errorf("OA downloads = %v, expected zero without open access", got)
	}

	excluded := New(alternatingRaw(), mustSettings(t, map[string]any{settings.KeyIncludeBackfile: false}), "5555-5555")
	if got := excluded.Downloads(ChannelBackfile); got != (mathutil.Series{}) {
		t.Errorf("backfile with channel excluded = %v, expected zero", got)
	}
}

func TestSocialNetworksClippedByOpenAccess(t *testing.T) {
	raw := alternatingRaw()
	raw.SocialNetworkMultiplier = 0.5
	// Every paper is open, so OA downloads cover the whole age curve.
	open := map[int]float64{2015: 60, 2016: 60, 2017: 60, 2018: 60, 2019: 60}
	raw.OA = map[rawdata.OAVariant]rawdata.OACounts{}
	for _, variant := range []rawdata.OAVariant{
		rawdata.WithSubmittedWithBronze, rawdata.WithSubmittedNoBronze,
		rawdata.NoSubmittedWithBronze, rawdata.NoSubmittedNoBronze,
	} {
		raw.OA[variant] = rawdata.OACounts{rawdata.OAGreen: open}
	}
	j := New(raw, settings.Default(), "6666-6666")

	total := j.DownloadsTotalByYear()
	oa := j.Downloads(ChannelOA)
	social := j.Downloads(ChannelSocialNetworks)
	for year := range total {
		if !mathutil.WithinTolerance(oa[year], 0.736638*2200, 1e-6) {
			t.Errorf("year %d OA = %v, expected the full age curve %v", year, oa[year], 0.736638*2200)
		}
		if social[year] >= total[year]*raw.SocialNetworkMultiplier {
			t.Errorf("year %d social = %v was not clipped below %v", year, social[year], total[year]*raw.SocialNetworkMultiplier)
		}
		if !mathutil.WithinTolerance(social[year], total[year]-oa[year], 1e-6) {
			t.Errorf("year %d social = %v, expected total - OA = %v", year, social[year], total[year]-oa[year])
		}
		if !mathutil.WithinTolerance(j.Downloads(ChannelBackfile)[year], 0, 1e-6) {
			t.Errorf("year %d backfile = %v, expected zero when OA covers every age", year, j.Downloads(ChannelBackfile)[year])
		}
		if !mathutil.WithinTolerance(j.DownloadsPaywalledByYear()[year], 0, 1e-6) {
			t.Errorf("year %d paywalled = %v, expected zero", year, j.DownloadsPaywalledByYear()[year])
		}
	}
}

func TestPaperFitFailureHoldsPapersFlat(t *testing.T) {
	raw := sampleRaw()
	raw.Papers[2016] = math.NaN()
	j := New(raw, settings.Default(), "1111-1111")

	diag := j.Diagnostics()
	if !diag.PaperFitFailed {
		t.Fatalf("expected paper fit failure, diagnostics %+v", diag)
	}
	if got := j.NumPapersByYear(); got != mathutil.Flat(115) {
		t.Errorf("NumPapersByYear() = %v, expected the last observed count held flat", got)
	}
	if got := j.NumPapers(); got != 115 {
		t.Errorf("NumPapers() = %v, expected 115", got)
	}
	if got := j.Growth(); got != (mathutil.Series{}) {
		t.Errorf("Growth() = %v, expected zero", got)
	}
	if got := j.DownloadsTotalByYear(); got != (mathutil.Series{}) {
		t.Errorf("DownloadsTotalByYear() = %v, expected zero with zero growth", got)
	}
	for _, c := range Channels {
		if got := j.Downloads(c); got != (mathutil.Series{}) {
			t.Errorf("channel %s downloads = %v, expected zero", c, got)
		}
	}
}

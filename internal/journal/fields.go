package journal

// field identifies one memoized derived value of a Journal.
type field int

// dependency tags whether a field's value changes with the subscription flag.
type dependency int

const (
	independent dependency = iota
	subscriptionDependent
)

const (
	fieldDownloadFit field = iota
	fieldPaperFit
	fieldCounterMultiplier
	fieldDownloadsByAge
	fieldDownloadsScaledByCounter
	fieldNumPapers
	fieldDownloadsPerPaperByAge
	fieldDownloadsTotalByYear
	fieldDownloadsTotal
	fieldDownloadsOlderThanFive
	fieldOAHistorical
	fieldPeerReviewedHistorical
	fieldNumOAForConvolving
	fieldDownloadsOABase
	fieldDownloadsOAByAge
	fieldSocialNetworkMultiplier
	fieldDownloadsByChannel
	fieldNumCitations
	fieldNumAuthorships
	fieldUseAddition
	fieldUseTotalByYear
	fieldUseTotal
	fieldUseWeightMultiplier
	fieldUseByChannel
	fieldUseFreeInstantByYear
	fieldUseFreeInstant
	fieldOABreakdown
	fieldCostSubscriptionByYear
	fieldCostSubscription
	fieldCostILLByYear
	fieldCostILL
	fieldCostSubscriptionMinusILL
	fieldNCPPU
	fieldOldSchoolCPU

	fieldCostActualByYear
	fieldCostActual
	fieldDownloadsActualByYear
	fieldDownloadsActual
	fieldUseActualByYear
	fieldUseActual
	fieldUseInstantByYear
	fieldUseInstant
	fieldUseInstantPercent
	fieldUseInstantPercentByYear

	numFields
)

type fieldSpec struct {
	name string
	dep  dependency
}

// fieldSpecs tags every field at definition time. Subscribe and Unsubscribe
// evict exactly the subscriptionDependent entries.
var fieldSpecs = [numFields]fieldSpec{
	fieldDownloadFit:              {"download_fit", independent},
	fieldPaperFit:                 {"paper_fit", independent},
	fieldCounterMultiplier:        {"downloads_counter_multiplier", independent},
	fieldDownloadsByAge:           {"downloads_by_age", independent},
	fieldDownloadsScaledByCounter: {"downloads_scaled_by_counter_by_year", independent},
	fieldNumPapers:                {"num_papers", independent},
	fieldDownloadsPerPaperByAge:   {"downloads_per_paper_by_age", independent},
	fieldDownloadsTotalByYear:     {"downloads_total_by_year", independent},
	fieldDownloadsTotal:           {"downloads_total", independent},
	fieldDownloadsOlderThanFive:   {"downloads_total_older_than_five_years", independent},
	fieldOAHistorical:             {"num_oa_historical_by_year", independent},
	fieldPeerReviewedHistorical:   {"num_peer_reviewed_historical_by_year", independent},
	fieldNumOAForConvolving:       {"num_oa_for_convolving", independent},
	fieldDownloadsOABase:          {"downloads_oa_base", independent},
	fieldDownloadsOAByAge:         {"downloads_oa_by_age", independent},
	fieldSocialNetworkMultiplier:  {"downloads_social_network_multiplier", independent},
	fieldDownloadsByChannel:       {"downloads_by_channel_by_year", independent},
	fieldNumCitations:             {"num_citations", independent},
	fieldNumAuthorships:           {"num_authorships", independent},
	fieldUseAddition:              {"use_addition_from_weights", independent},
	fieldUseTotalByYear:           {"use_total_by_year", independent},
	fieldUseTotal:                 {"use_total", independent},
	fieldUseWeightMultiplier:      {"use_weight_multiplier", independent},
	fieldUseByChannel:             {"use_by_channel_by_year", independent},
	fieldUseFreeInstantByYear:     {"use_free_instant_by_year", independent},
	fieldUseFreeInstant:           {"use_free_instant", independent},
	fieldOABreakdown:              {"oa_breakdown", independent},
	fieldCostSubscriptionByYear:   {"cost_subscription_by_year", independent},
	fieldCostSubscription:         {"cost_subscription", independent},
	fieldCostILLByYear:            {"cost_ill_by_year", independent},
	fieldCostILL:                  {"cost_ill", independent},
	fieldCostSubscriptionMinusILL: {"cost_subscription_minus_ill", independent},
	fieldNCPPU:                    {"ncppu", independent},
	fieldOldSchoolCPU:             {"old_school_cpu", independent},

	fieldCostActualByYear:        {"cost_actual_by_year", subscriptionDependent},
	fieldCostActual:              {"cost_actual", subscriptionDependent},
	fieldDownloadsActualByYear:   {"downloads_actual_by_year", subscriptionDependent},
	fieldDownloadsActual:         {"downloads_actual", subscriptionDependent},
	fieldUseActualByYear:         {"use_actual_by_year", subscriptionDependent},
	fieldUseActual:               {"use_actual", subscriptionDependent},
	fieldUseInstantByYear:        {"use_instant_by_year", subscriptionDependent},
	fieldUseInstant:              {"use_instant", subscriptionDependent},
	fieldUseInstantPercent:       {"use_instant_percent", subscriptionDependent},
	fieldUseInstantPercentByYear: {"use_instant_percent_by_year", subscriptionDependent},
}

func (f field) String() string {
	return fieldSpecs[f].name
}

func (f field) dependsOnSubscription() bool {
	return fieldSpecs[f].dep == subscriptionDependent
}

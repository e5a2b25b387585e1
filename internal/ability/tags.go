package ability

// Tag prefixes of the ability .lst vocabulary.
const (
	TagCategory     = "CATEGORY:"
	TagKey          = "KEY:"
	TagType         = "TYPE:"
	TagAlignExclude = "!PREALIGN:"
	TagRace         = "PRERACE:"
	TagStat         = "PRESTAT:"
	TagAttackBonus  = "PRETOTALAB:"
	TagAbility      = "PREABILITY:"
	TagDesc         = "DESC:"
	TagMult         = "MULT:"
	TagStack        = "STACK:"
	TagPreMult      = "PREMULT:"
	TagVarGTEQ      = "PREVARGTEQ:"
	TagLevel        = "PREVARGTEQ:TL,"
	TagPreText      = "PRETEXT:"
	TagChoose       = "CHOOSE"
	TagCost         = "COST:"
)

// Fixed category values.
const (
	CategoryFeat           = "FEAT"
	CategorySpecialAbility = "Special Ability"
	FeatCategoryFilter     = "CATEGORY=FEAT"
)

// Engine variables used for Pathfinder 1e score prerequisites and trait
// restrictions.
const (
	VarStatScoreSTR    = "PreStatScore_STR"
	VarStatScoreDEX    = "PreStatScore_DEX"
	VarStatScoreINT    = "PreStatScore_INT"
	VarFeatDex         = "FeatDexRequirement"
	VarCombatFeatInt   = "CombatFeatIntRequirement"
	VarBypassTrait     = "PREVAREQ:BypassTraitRestriction,1"
	ValueChooseNone    = "CHOOSE:NOCHOICE"
	ValueCostZero      = "COST:0"
	AdoptiveRacePrefix = "Adoptive Race ~ "
)

// File level markers.
const (
	MarkerHeader  = "SOURCELONG"
	MarkerMod     = ".MOD"
	CommentPrefix = "#"
)

// BasicTraitCategories get the extra BasicTrait type.
var BasicTraitCategories = []string{"Combat", "Social", "Magic", "Faith"}

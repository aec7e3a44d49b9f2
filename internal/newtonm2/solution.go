package newtonm2

import "navlink/internal/nav"

// Receiver solution status codes (subset we interpret).
const (
	solComputed uint32 = 0
)

// Datum ids.
const datumWGS84 uint32 = 61

// Position/velocity type codes from the receiver's documented code space.
const (
	posNone          uint32 = 0
	posFixedPos      uint32 = 1
	posFixedHeight   uint32 = 2
	posFloatConv     uint32 = 4
	posWideLane      uint32 = 5
	posNarrowLane    uint32 = 6
	posDopplerVel    uint32 = 8
	posSingle        uint32 = 16
	posPSRDiff       uint32 = 17
	posWAAS          uint32 = 18
	posPropagated    uint32 = 19
	posOmnistar      uint32 = 20
	posL1Float       uint32 = 32
	posIonoFreeFloat uint32 = 33
	posNarrowFloat   uint32 = 34
	posL1Int         uint32 = 48
	posWideInt       uint32 = 49
	posNarrowInt     uint32 = 50
	posRTKDirectIns  uint32 = 51
	posInsSBAS       uint32 = 52
	posInsPSRSP      uint32 = 53
	posInsPSRDiff    uint32 = 54
	posInsRTKFloat   uint32 = 55
	posInsRTKFixed   uint32 = 56
	posInsOmnistar   uint32 = 57
	posInsOmnistarHP uint32 = 58
	posInsOmnistarXP uint32 = 59
	posOmnistarHP    uint32 = 64
	posOmnistarXP    uint32 = 65
	posPPPConverging uint32 = 68
	posPPP           uint32 = 69
	posInsPPPConv    uint32 = 73
	posInsPPP        uint32 = 74
)

// fixQualityByType collapses position-type codes into quality classes.
// Codes absent from the table classify as FixInvalid; there is no silent
// fall-through.
var fixQualityByType = map[uint32]nav.FixQuality{
	posSingle:   nav.FixSingle,
	posInsPSRSP: nav.FixSingle,

	posPSRDiff:    nav.FixDifferential,
	posWAAS:       nav.FixDifferential,
	posInsSBAS:    nav.FixDifferential,
	posInsPSRDiff: nav.FixDifferential,

	posFloatConv:     nav.FixFloatRTK,
	posL1Float:       nav.FixFloatRTK,
	posIonoFreeFloat: nav.FixFloatRTK,
	posNarrowFloat:   nav.FixFloatRTK,
	posRTKDirectIns:  nav.FixFloatRTK,
	posInsRTKFloat:   nav.FixFloatRTK,

	posWideLane:    nav.FixIntegerRTK,
	posNarrowLane:  nav.FixIntegerRTK,
	posL1Int:       nav.FixIntegerRTK,
	posWideInt:     nav.FixIntegerRTK,
	posNarrowInt:   nav.FixIntegerRTK,
	posInsRTKFixed: nav.FixIntegerRTK,

	posOmnistar:      nav.FixPPP,
	posOmnistarHP:    nav.FixPPP,
	posOmnistarXP:    nav.FixPPP,
	posInsOmnistar:   nav.FixPPP,
	posInsOmnistarHP: nav.FixPPP,
	posInsOmnistarXP: nav.FixPPP,
	posPPPConverging: nav.FixPPP,
	posPPP:           nav.FixPPP,
	posInsPPPConv:    nav.FixPPP,
	posInsPPP:        nav.FixPPP,

	posPropagated: nav.FixPropagated,

	posNone:        nav.FixInvalid,
	posFixedPos:    nav.FixInvalid,
	posFixedHeight: nav.FixInvalid,
	posDopplerVel:  nav.FixInvalid,
}

// documentedPosTypes is the full documented code space; init verifies the
// classification table covers it so new codes cannot slip through unmapped.
var documentedPosTypes = []uint32{
	posNone, posFixedPos, posFixedHeight, posFloatConv, posWideLane,
	posNarrowLane, posDopplerVel, posSingle, posPSRDiff, posWAAS,
	posPropagated, posOmnistar, posL1Float, posIonoFreeFloat, posNarrowFloat,
	posL1Int, posWideInt, posNarrowInt, posRTKDirectIns, posInsSBAS,
	posInsPSRSP, posInsPSRDiff, posInsRTKFloat, posInsRTKFixed,
	posInsOmnistar, posInsOmnistarHP, posInsOmnistarXP, posOmnistarHP,
	posOmnistarXP, posPPPConverging, posPPP, posInsPPPConv, posInsPPP,
}

func init() {
	for _, code := range documentedPosTypes {
		if _, ok := fixQualityByType[code]; !ok {
			panic("newtonm2: position type code unclassified")
		}
	}
}

// classifyFix maps a position-type code to its quality class. Unknown codes
// are explicitly invalid.
func classifyFix(solStatus, posType uint32) nav.FixQuality {
	if solStatus != solComputed {
		return nav.FixInvalid
	}
	if q, ok := fixQualityByType[posType]; ok {
		return q
	}
	return nav.FixInvalid
}

// INS status codes.
const (
	insInactive          uint32 = 0
	insAligning          uint32 = 1
	insHighVariance      uint32 = 2
	insSolutionGood      uint32 = 3
	insSolutionFree      uint32 = 6
	insAlignmentComplete uint32 = 7
)

func classifyIns(status uint32) nav.InsQuality {
	switch status {
	case insSolutionGood, insAlignmentComplete:
		return nav.InsGood
	case insAligning, insHighVariance, insSolutionFree:
		return nav.InsConverging
	default:
		return nav.InsInvalid
	}
}

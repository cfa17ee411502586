package knowledge

// Requirements lists the equipment tiers behind a claimed capability.
// Critical items are disqualifying when absent; required items degrade the
// claim; recommended items never affect validation outcomes.
type Requirements struct {
	Critical    []string `json:"critical"`
	Required    []string `json:"required"`
	Recommended []string `json:"recommended"`
}

// capabilityNames fixes the lookup order for partial matching. Map
// iteration order would otherwise make fallback results nondeterministic.
var capabilityNames = []string{
	"neurosurgery",
	"cardiovascular surgery",
	"cataract surgery",
	"dialysis",
	"cardiology",
	"ophthalmology",
	"surgery",
	"orthopedic surgery",
	"maternity",
	"intensive care",
	"hospitalist",
	"emergency medicine",
}

var capabilityRequirements = map[string]Requirements{
	"neurosurgery": {
		Critical:    []string{"ICU", "operating room", "operating microscope", "anesthesia machine"},
		Required:    []string{"CT scan", "surgical instruments", "autoclave", "ventilator"},
		Recommended: []string{"MRI", "neuromonitoring equipment"},
	},
	"cardiovascular surgery": {
		Critical:    []string{"ICU", "operating room", "cardiopulmonary bypass machine", "anesthesia machine"},
		Required:    []string{"ECG", "defibrillator", "surgical instruments", "blood bank"},
		Recommended: []string{"cardiac catheterization lab", "ECMO"},
	},
	"cataract surgery": {
		Critical:    []string{"operating microscope", "phacoemulsification machine", "operating room"},
		Required:    []string{"surgical instruments", "autoclave", "slit lamp"},
		Recommended: []string{"optical coherence tomography", "IOL master"},
	},
	"dialysis": {
		Critical:    []string{"dialysis machine", "water purification system", "dialysis chair"},
		Required:    []string{"vascular access supplies", "emergency equipment"},
		Recommended: []string{"portable dialysis machine"},
	},
	"cardiology": {
		Critical:    []string{"ECG machine", "defibrillator"},
		Required:    []string{"echocardiography", "cardiac monitor", "stress test equipment"},
		Recommended: []string{"holter monitor", "cardiac catheterization lab"},
	},
	"ophthalmology": {
		Critical:    []string{"slit lamp", "ophthalmoscope"},
		Required:    []string{"tonometer", "refraction equipment"},
		Recommended: []string{"optical coherence tomography", "fundus camera"},
	},
	"surgery": {
		Critical:    []string{"operating room", "anesthesia machine", "surgical instruments"},
		Required:    []string{"autoclave", "surgical lights", "operating table"},
		Recommended: []string{"laparoscopic equipment", "surgical microscope"},
	},
	"orthopedic surgery": {
		Critical:    []string{"operating room", "C-arm fluoroscopy", "surgical instruments"},
		Required:    []string{"orthopedic implants", "power tools", "casting equipment"},
		Recommended: []string{"arthroscopy equipment"},
	},
	"maternity": {
		Critical:    []string{"delivery room", "fetal monitor", "resuscitation equipment"},
		Required:    []string{"ultrasound", "blood bank access", "neonatal care equipment"},
		Recommended: []string{"operating room for C-sections", "NICU"},
	},
	"intensive care": {
		Critical:    []string{"ICU beds", "ventilator", "cardiac monitor", "defibrillator"},
		Required:    []string{"infusion pumps", "emergency medications", "laboratory access"},
		Recommended: []string{"dialysis capability", "advanced imaging"},
	},
	"hospitalist": {
		Critical:    []string{"hospital beds", "monitoring equipment", "emergency cart"},
		Required:    []string{"laboratory access", "imaging access", "pharmacy"},
		Recommended: []string{"electronic health records", "consultation services"},
	},
	"emergency medicine": {
		Critical:    []string{"emergency department", "defibrillator", "crash cart", "oxygen supply"},
		Required:    []string{"X-ray", "CT scan", "laboratory", "pharmacy"},
		Recommended: []string{"trauma bay", "helicopter pad"},
	},
}

// procedureSpecialty maps a named procedure to the capability whose
// requirement tiers govern it. Keys are lowercase.
var procedureSpecialty = map[string]string{
	"cataract surgery":    "ophthalmology",
	"glaucoma surgery":    "ophthalmology",
	"retinal surgery":     "ophthalmology",
	"lasik":               "ophthalmology",
	"coronary bypass":     "cardiovascular surgery",
	"valve replacement":   "cardiovascular surgery",
	"angioplasty":         "cardiology",
	"hemodialysis":        "dialysis",
	"peritoneal dialysis": "dialysis",
	"knee replacement":    "orthopedic surgery",
	"hip replacement":     "orthopedic surgery",
	"cesarean section":    "maternity",
	"normal delivery":     "maternity",
	"brain surgery":       "neurosurgery",
	"spinal surgery":      "neurosurgery",
}

// equipmentSynonyms groups alternate names datasets use for the same
// equipment. Keys are lowercase canonical names from the requirement
// tiers.
var equipmentSynonyms = map[string][]string{
	"operating room":     {"operating theatre", "surgery room", "or"},
	"anesthesia machine": {"anesthesia", "anaesthesia machine"},
	"icu":                {"intensive care", "critical care", "icu bed"},
	"dialysis machine":   {"hemodialysis machine", "dialysis equipment"},
	"ct scan":            {"ct scanner", "computed tomography", "cat scan"},
	"mri":                {"mri scanner", "magnetic resonance imaging"},
}

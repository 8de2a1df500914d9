package expert

import "sort"

// Descriptor is the static metadata for one expert domain. The table is
// loaded once at process start and read concurrently afterwards.
type Descriptor struct {
	Key             string
	Title           string
	Expertise       []string
	Specializations []string
	Keywords        []string
	Description     string
}

var descriptors = map[string]Descriptor{
	"psychology": {
		Key:   "psychology",
		Title: "Clinical & Cognitive Psychology Expert",
		Expertise: []string{
			"Cognitive Psychology", "Clinical Psychology", "Developmental Psychology",
			"Social Psychology", "Neuropsychology", "Behavioral Psychology",
		},
		Specializations: []string{
			"Cognitive Behavioral Therapy", "Mindfulness-Based Interventions",
			"Psychological Assessment", "Trauma-Informed Care",
		},
		Keywords: []string{
			"mental health", "behavior", "cognitive", "therapy", "psychology", "emotions",
			"personality", "development", "learning", "memory", "perception", "stress",
			"anxiety", "depression", "trauma", "relationships", "motivation", "habits",
		},
		Description: "Expert in understanding human behavior, cognition, and mental processes. Specializes in evidence-based therapeutic approaches, psychological assessment, and research methodologies across the lifespan.",
	},
	"economy": {
		Key:   "economy",
		Title: "Macroeconomic Policy & Market Analysis Expert",
		Expertise: []string{
			"Macroeconomics", "Microeconomics", "International Economics",
			"Development Economics", "Behavioral Economics", "Labor Economics",
		},
		Specializations: []string{
			"Monetary Policy Analysis", "Fiscal Policy Evaluation",
			"Economic Forecasting", "Trade Policy Assessment",
		},
		Keywords: []string{
			"economy", "economic", "market", "gdp", "inflation", "recession", "growth",
			"policy", "trade", "supply", "demand", "price", "employment", "business",
			"fiscal", "monetary", "investment", "productivity", "competition",
		},
		Description: "Expert in economic systems, market dynamics, and policy analysis. Specializes in macroeconomic forecasting, policy evaluation, and assessing the impact of interventions on economic indicators.",
	},
	"finance": {
		Key:   "finance",
		Title: "Investment Strategy & Risk Management Expert",
		Expertise: []string{
			"Corporate Finance", "Investment Analysis", "Portfolio Management",
			"Risk Management", "Quantitative Finance", "Financial Markets",
		},
		Specializations: []string{
			"Asset Allocation Strategies", "Credit Risk Assessment",
			"Valuation Analysis", "Retirement Planning",
		},
		Keywords: []string{
			"finance", "investment", "portfolio", "risk", "return", "trading", "valuation",
			"stocks", "bonds", "derivatives", "asset", "wealth", "retirement", "banking",
			"insurance", "capital", "dividend", "interest", "credit", "loans",
		},
		Description: "Expert in financial markets, investment strategies, and risk management. Specializes in portfolio optimization, asset valuation, and comprehensive risk assessment across market conditions.",
	},
	"architecture": {
		Key:   "architecture",
		Title: "Sustainable Design & Urban Planning Expert",
		Expertise: []string{
			"Sustainable Architecture", "Urban Design", "Architectural History",
			"Environmental Design", "Landscape Architecture", "Housing Design",
		},
		Specializations: []string{
			"Green Building Certification", "Passive House Design",
			"Adaptive Reuse", "Community Planning",
		},
		Keywords: []string{
			"architecture", "building", "design", "construction", "planning", "space",
			"sustainable", "green", "urban", "residential", "commercial", "structure",
			"materials", "environment", "zoning", "blueprints", "renovation",
		},
		Description: "Expert in architectural design, urban planning, and sustainable construction. Specializes in balancing aesthetic, functional, and environmental requirements in diverse architectural contexts.",
	},
	"engineering": {
		Key:   "engineering",
		Title: "Systems Engineering & Innovation Expert",
		Expertise: []string{
			"Systems Engineering", "Software Engineering", "Mechanical Engineering",
			"Electrical Engineering", "Civil Engineering", "Industrial Engineering",
		},
		Specializations: []string{
			"Product Development", "Process Optimization",
			"Automation & Control", "Renewable Energy Systems",
		},
		Keywords: []string{
			"engineering", "technical", "system", "design", "development", "innovation",
			"technology", "manufacturing", "automation", "optimization", "efficiency",
			"quality", "safety", "process", "mechanical", "electrical", "software",
		},
		Description: "Expert in engineering design, systems optimization, and technological innovation. Specializes in developing scalable technical solutions while ensuring safety, efficiency, and sustainability.",
	},
	"design": {
		Key:   "design",
		Title: "User Experience & Creative Design Expert",
		Expertise: []string{
			"User Experience Design", "User Interface Design", "Graphic Design",
			"Product Design", "Service Design", "Interaction Design",
		},
		Specializations: []string{
			"Human-Centered Design", "Design Systems",
			"Accessibility Design", "Prototyping & Testing",
		},
		Keywords: []string{
			"design", "user", "interface", "experience", "visual", "creative", "brand",
			"prototype", "usability", "accessibility", "aesthetic", "layout", "typography",
			"color", "mobile", "web", "app", "graphics", "communication",
		},
		Description: "Expert in user-centered design and creative problem-solving. Specializes in creating intuitive interfaces and translating complex requirements into elegant, accessible design solutions.",
	},
	"life-sciences": {
		Key:   "life-sciences",
		Title: "Biomedical Research & Healthcare Expert",
		Expertise: []string{
			"Molecular Biology", "Cell Biology", "Genetics", "Biochemistry",
			"Immunology", "Neuroscience", "Pharmacology",
		},
		Specializations: []string{
			"Drug Discovery", "Genetic Engineering",
			"Personalized Medicine", "Clinical Trials",
		},
		Keywords: []string{
			"biology", "medical", "health", "genetics", "dna", "cell", "protein",
			"disease", "treatment", "drug", "clinical", "research", "biotechnology",
			"genome", "immunology", "neuroscience", "pharmacology", "diagnosis",
		},
		Description: "Expert in biological sciences and biomedical research. Specializes in molecular mechanisms, genetic analysis, and translating research findings into applications for healthcare and biotechnology.",
	},
	"mathematics": {
		Key:   "mathematics",
		Title: "Applied Mathematics & Statistical Analysis Expert",
		Expertise: []string{
			"Statistics", "Probability Theory", "Mathematical Modeling",
			"Optimization", "Numerical Analysis", "Operations Research",
		},
		Specializations: []string{
			"Predictive Modeling", "Time Series Analysis",
			"Bayesian Analysis", "Experimental Design",
		},
		Keywords: []string{
			"mathematics", "statistics", "probability", "modeling", "analysis", "data",
			"calculation", "algorithm", "optimization", "prediction", "numbers",
			"equations", "variables", "correlation", "regression", "sampling",
		},
		Description: "Expert in mathematical analysis and statistical methodology. Specializes in developing mathematical models, analyzing complex datasets, and providing quantitative insights for decision-making.",
	},
	"physics": {
		Key:   "physics",
		Title: "Theoretical & Applied Physics Expert",
		Expertise: []string{
			"Quantum Mechanics", "Classical Mechanics", "Thermodynamics",
			"Electromagnetism", "Relativity", "Condensed Matter Physics",
		},
		Specializations: []string{
			"Quantum Computing", "Materials Science",
			"Computational Physics", "Applied Physics",
		},
		Keywords: []string{
			"physics", "quantum", "energy", "force", "particle", "wave", "field",
			"mechanics", "thermodynamics", "electromagnetic", "relativity", "matter",
			"motion", "temperature", "pressure", "radiation", "optics",
		},
		Description: "Expert in fundamental physical principles and their applications. Specializes in theoretical analysis and applying physics principles to solve practical problems across technology and research.",
	},
	"philosophy": {
		Key:   "philosophy",
		Title: "Ethics & Critical Reasoning Expert",
		Expertise: []string{
			"Ethics", "Logic", "Metaphysics", "Epistemology",
			"Political Philosophy", "Philosophy of Mind",
		},
		Specializations: []string{
			"Biomedical Ethics", "AI Ethics",
			"Philosophy of Technology", "Virtue Ethics",
		},
		Keywords: []string{
			"philosophy", "ethics", "moral", "reasoning", "logic", "values", "principles",
			"justice", "rights", "meaning", "existence", "consciousness", "truth",
			"knowledge", "belief", "argument", "critical thinking", "virtue",
		},
		Description: "Expert in philosophical reasoning and ethical analysis. Specializes in applying philosophical frameworks to complex moral and conceptual problems while considering multiple perspectives.",
	},
}

// Lookup returns the Descriptor for a domain key.
func Lookup(key string) (Descriptor, bool) {
	d, ok := descriptors[key]
	return d, ok
}

// Known reports whether a domain key has a Descriptor.
func Known(key string) bool {
	_, ok := descriptors[key]
	return ok
}

// All returns every Descriptor sorted by key for stable iteration.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns every known domain key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(descriptors))
	for k := range descriptors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

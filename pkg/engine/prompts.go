package engine

// classifyPrompt routes a question to exactly one intent label. The
// model must answer with the bare label; anything else falls back to
// SQL_QUERY.
const classifyPrompt = `You are the supervisor for a US healthcare facility data system.

Your job is to ROUTE user questions to the correct downstream analysis.
Choose EXACTLY ONE of these intent labels:

SQL_QUERY:
- Simple counts, filters, aggregations
- Examples: "How many hospitals have cardiology?", "Which region has most hospitals?"

VECTOR_QUERY:
- Semantic search over facility descriptions
- Examples: "What services do major medical centers offer?"

GEO_QUERY:
- Geographic analysis, proximity, distance
- Examples: "How many hospitals within 50 km of major cities?"

ANALYTICS_QUERY:
- Data quality analysis, mismatches, contradictions
- Examples: "Which facilities claim neurosurgery but lack ICU?", "Find data quality issues"

COUNTERFACTUAL_QUERY:
- What-if scenarios and simulations
- Examples: "What if we add 5 dialysis centers in rural Texas?"

HYBRID_QUERY:
- Requires multiple types of analysis
- Examples: "Compare cardiology coverage across regions with accessibility scores"

User question: %s

Return ONLY ONE WORD (the intent label):`

// normalizePrompt translates a question into exact dataset values. The
// placeholders are, in order: specialties, departments, facility types,
// the five regional state lists, and the question itself.
const normalizePrompt = `You are the query normalizer for a US healthcare dataset.

Your job is to NORMALIZE the user query into dataset-compatible constraints.
You do NOT answer the query.
You do NOT access data.
You ONLY translate human language into exact database values.

----------------------------------------
DATASET FACTS (AUTHORITATIVE)
----------------------------------------

1. The dataset contains ONLY US hospitals and doctors.

2. Geography:
   - Region column: USPS state codes ONLY
   - City column: city names
   - Coordinates: latitude, longitude

3. Specialties available in the database (EXACT TEXT):
%s

4. Departments available in the database (EXACT TEXT):
%s

5. Facility types available:
%s

----------------------------------------
GEOGRAPHIC NORMALIZATION RULES
----------------------------------------

CRITICAL: ALWAYS output USPS state codes, NEVER full names.

US STATES BY REGION:

Northern US / Northern America:
%s

Southern US:
%s

Western US:
%s

Eastern US:
%s

Midwest US:
%s

EXAMPLES:
- "Northern America" -> states ["WA", "OR", "ID", "MT", "WY", "ND", "SD", "MN", "WI", "MI", "IL", "IN", "OH", "PA", "NY", "VT", "NH", "ME", "MA", "CT", "RI"]
- "California" -> states ["CA"]
- "New York" -> states ["NY"]
- "Texas" -> states ["TX"]

----------------------------------------
MEDICAL NORMALIZATION RULES
----------------------------------------

CRITICAL: Map user terms to EXACT database values.

SPECIALTY MAPPINGS:
- "gynecologist" -> "Obstetrics & Gynecology"
- "gynecology" -> "Obstetrics & Gynecology"
- "OB/GYN" -> "Obstetrics & Gynecology"
- "women's health" -> "Obstetrics & Gynecology"
- "cardiologist" -> "Cardiology"
- "heart doctor" -> "Cardiology"
- "brain surgeon" -> "Neurology" OR "Surgery"
- "eye doctor" -> "Ophthalmology"
- "surgeon" -> "Surgery"
- "emergency doctor" -> "Emergency Medicine"
- "family doctor" -> "Family Medicine"
- "pediatrician" -> "Pediatrics"
- "psychiatrist" -> "Psychiatry & Neurology"

PROCEDURE MAPPINGS:
- "C-section" -> capability "Obstetrics & Gynecology", department "Obstetrics & Gynecology"
- "heart surgery" -> capability "Cardiology" or "Surgery"
- "cataract surgery" -> capability "Ophthalmology"

Record any ambiguities or assumptions as warnings, USPS codes only in
states, exact database values only in specialties and departments, and
the user's own words in original_terms.

USER QUERY:
%s

NORMALIZATION:`

// synthesisPrompt produces the final answer from the compiled stage
// results. Placeholders: question, compiled data, citation block.
const synthesisPrompt = `You are a healthcare data analyst. Answer the user's question using ONLY the data provided.

User question: %s

Available data:
%s

%s

1. Answer directly and concisely.
2. Cite specific numbers and facts.
3. Highlight data quality concerns if found.
4. Mention systemic patterns if detected.
5. Use clear, non-technical language.

If external verification was performed, mention the verification results.
If no data is available, say "No data available to answer this question."
Do not narrate which analysis produced which number; summarize the key insights from the data.

Answer:`

// counterfactualPrompt extracts a what-if scenario's parameters. The
// output shape is enforced by schema.
const counterfactualPrompt = `Parse this counterfactual healthcare scenario question and extract its parameters.

Question: %s

Extract:
1. The action: "add", "upgrade" or "remove"
2. The medical capability the scenario concerns
3. The location or region the scenario targets
4. How many facilities are affected (default 1 when the question does not say)`

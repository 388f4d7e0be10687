package analysis

// Prompts sent to the model gateway. Each asks for strict JSON, but the
// interpreter never trusts that the response actually is JSON.

const detectionPrompt = `You are an agricultural image classifier for lanzones (Lansium domesticum).
Classify the subject of this photo as exactly one of:
- "lanzones_fruit": the photo mainly shows lanzones fruit (single or bunch)
- "lanzones_leaf": the photo mainly shows lanzones leaves or foliage
- "unrelated": anything else (other plants, people, objects, unclear photos)

Respond with only this JSON object, nothing else:
{"category": "<lanzones_fruit|lanzones_leaf|unrelated>", "confidence": <0.0-1.0>}`

const fruitAnalysisPrompt = `You are a plant pathologist specializing in lanzones (Lansium domesticum).
Examine this lanzones fruit photo for diseases such as anthracnose, fruit rot,
sooty mold, and scale infestation.

Respond with only this JSON object, nothing else:
{
  "diseaseDetected": <true|false>,
  "diseaseName": "<name or null if healthy>",
  "confidence": <0.0-1.0>,
  "symptoms": ["<observed symptom>", ...],
  "recommendations": ["<treatment or handling advice>", ...],
  "severity": "<none|low|medium|high>"
}
Use severity "none" if and only if no disease is detected.`

const leafAnalysisPrompt = `You are a plant pathologist specializing in lanzones (Lansium domesticum).
Examine this lanzones leaf photo for diseases such as leaf spot, leaf blight,
sooty mold, and pink disease.

Respond with only this JSON object, nothing else:
{
  "diseaseDetected": <true|false>,
  "diseaseName": "<name or null if healthy>",
  "confidence": <0.0-1.0>,
  "symptoms": ["<observed symptom>", ...],
  "recommendations": ["<treatment or handling advice>", ...],
  "severity": "<none|low|medium|high>"
}
Use severity "none" if and only if no disease is detected.`

// neutralObservationPrompt is used for unrelated subjects. It must never
// emit disease fields.
const neutralObservationPrompt = `Briefly describe what this photo shows, in one or two sentences.
This is not a lanzones fruit or leaf, so do not mention plant diseases.

Respond with only this JSON object, nothing else:
{"description": "<short neutral description>"}`

const varietyPrompt = `This photo shows lanzones (Lansium domesticum) fruit.
Identify the variety: longkong, paete, duco, or jolo.

Respond with only this JSON object, nothing else:
{
  "variety": "<longkong|paete|duco|jolo|unknown>",
  "confidence": <0.0-1.0>,
  "characteristics": ["<distinguishing trait you observed>", ...],
  "description": "<one sentence on why>"
}`

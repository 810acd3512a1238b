package ollama

// recognitionPrompt is the fixed instruction sent with every photo. The model
// is asked for a bare JSON array; parsing still tolerates markdown fences.
const recognitionPrompt = `You are a food recognition assistant.
Identify every distinct food item visible on this meal photo.
Return a strict JSON array, no markdown, no extra keys. Each element:
{"name": "food name", "quantity": "estimated amount as number of grams", "unit": "grams", "preparation": "cooking method or unknown", "confidence": "high|medium|low"}
Estimate quantities in grams for a typical serving of what is visible.
If nothing edible is visible, return [].`

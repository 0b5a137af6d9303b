package scanning

import (
	"fmt"

	"github.com/nukk-pain/wine-sub001/internal/document"
)

// ocrPrompt is the shared prompt used by all LLM providers to transcribe a photo
const ocrPrompt = `You are reading a photo of a wine bottle label or a retail receipt. Transcribe every piece of printed text you can see.

Rules:
- Keep the original language and spelling (Korean, English, French, Italian, ...). Do not translate.
- Keep accents and special characters exactly as printed (é, ô, ₩, €).
- Put each printed line on its own line, top to bottom.
- Keep numbers, prices, percentages and dates exactly as printed.
- Return ONLY the transcribed text. Do not describe the image, do not add commentary, do not use markdown code blocks.`

// refinePrompt asks a provider to structure OCR text of a wine label
var refinePrompt = fmt.Sprintf(`You are given OCR text read from a wine bottle label. Identify the wine it describes.

Return ONLY valid JSON in this exact format:
{
  %q: "wine name as printed, without the vintage",
  %q: 2015,
  "Appellation": "appellation, if printed",
  %q: "region / producer",
  %q: "grape varieties, comma separated",
  "Alcohol": 13.5,
  "Volume": "750ml"
}

Important:
- Vintage must be a four digit number
- Alcohol must be a number (percentage, not a string)
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks

OCR text:
`, document.FieldName, document.FieldVintage, document.FieldRegionProducer, document.FieldVarietal)

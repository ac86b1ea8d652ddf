package api

import "trip-assistant/internal/common/validation"

// chatRequestSchema guards the wire shape before the request reaches the
// dialogue engine. Unknown context states are tolerated here and reset later.
var chatRequestSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "minLength": 1, "maxLength": 2000, "pattern": "\\S"},
    "language": {"type": ["string", "null"], "maxLength": 35},
    "context": {
      "type": ["object", "null"],
      "properties": {
        "theme": {"type": ["string", "null"]},
        "region": {"type": ["string", "null"]},
        "budget": {"type": ["integer", "null"], "minimum": 0},
        "preferences": {"type": ["string", "null"]},
        "durationMinutes": {"type": ["integer", "null"], "minimum": 0},
        "dayCount": {"type": ["integer", "null"], "minimum": 1, "maximum": 15},
        "conversationState": {"type": ["string", "null"]},
        "lastBotQuestion": {"type": ["string", "null"]},
        "sessionId": {"type": ["string", "null"], "maxLength": 128},
        "conversationStartTime": {"type": ["string", "null"]},
        "userLanguage": {"type": ["string", "null"]}
      }
    }
  }
}`)

package assistant

import "fmt"

// emptyContextPlaceholder stands in for the context block when retrieval
// produced nothing. The literal is part of the model contract.
const emptyContextPlaceholder = "(no relevant notes or todos found)"

const listingTemplate = `You are an assistant that answers questions based only on the provided context.

The context is a list of Todos and Notes for one user.

- If the context contains any matching Todos or Notes, list them clearly, one per line.
- Each Todo line must include: title, date, and whether it is Pending or Completed.
- If there are no matching items, reply exactly: "You have no matching tasks or notes."
- Do NOT ask the user for more information.
- Do NOT give generic productivity advice.

Context:
%s

Question: %s

Now answer based only on the context.`

const openTemplate = `You are an assistant that answers questions based only on the provided context.

Context:
%s

Question: %s

Answer clearly and accurately based only on the context.`

// ComposePrompt interpolates the context and question into the template the
// intent selects: the constrained listing template for routed intents, the
// open template for generic questions.
func ComposePrompt(intent Intent, contextText, question string) string {
	if contextText == "" {
		contextText = emptyContextPlaceholder
	}
	if intent == IntentGeneric {
		return fmt.Sprintf(openTemplate, contextText, question)
	}
	return fmt.Sprintf(listingTemplate, contextText, question)
}

package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposePromptListing(t *testing.T) {
	prompt := ComposePrompt(IntentPendingTasks, "Todo: Dentist | Status: Pending | Date: ", "show my pending tasks")

	assert.Contains(t, prompt, "list them clearly, one per line")
	assert.Contains(t, prompt, `"You have no matching tasks or notes."`)
	assert.Contains(t, prompt, "Context:\nTodo: Dentist | Status: Pending | Date: ")
	assert.Contains(t, prompt, "Question: show my pending tasks")
	assert.True(t, strings.HasSuffix(prompt, "Now answer based only on the context."))
}

func TestComposePromptOpen(t *testing.T) {
	prompt := ComposePrompt(IntentGeneric, "Note: Ideas | Date:  | Text: sailing", "how is my week going")

	assert.NotContains(t, prompt, "one per line")
	assert.Contains(t, prompt, "Question: how is my week going")
	assert.True(t, strings.HasSuffix(prompt, "Answer clearly and accurately based only on the context."))
}

func TestComposePromptEmptyContextPlaceholder(t *testing.T) {
	for _, intent := range []Intent{IntentGeneric, IntentAllNotes} {
		prompt := ComposePrompt(intent, "", "anything")
		assert.Contains(t, prompt, "Context:\n(no relevant notes or todos found)")
	}
}

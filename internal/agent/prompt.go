package agent

// DefaultSystemPrompt seeds every conversation unless overridden in config.
const DefaultSystemPrompt = `You are a helpful agent that can manage tasks in a task management system.
You can help the user by using the available tools.`

// ModelErrorReply is the only text an end user sees when the model API
// fails; the classified error stays in the logs.
const ModelErrorReply = "Sorry, there was an error communicating with the model."

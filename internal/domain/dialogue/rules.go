// Package dialogue answers free-text chat input with canned guidance and
// proposes form defaults, both driven by one ordered rule table.
package dialogue

// Category identifies a rule in the table.
type Category string

const (
	CategoryCustomerSupport   Category = "customer_support"
	CategoryContentModeration Category = "content_moderation"
	CategoryDataProcessing    Category = "data_processing"
	CategoryScheduling        Category = "scheduling"
	CategoryEcommerce         Category = "ecommerce"
	CategoryDeploymentHelp    Category = "deployment_help"
	CategoryGettingStarted    Category = "getting_started"
	// CategoryGeneric is reported when no rule matched.
	CategoryGeneric Category = "generic"
)

// Rule maps trigger keywords to a canned reply and optional form defaults.
// Keywords are matched as lower-case substrings. A rule without DefaultName
// is guidance only and never autofills.
type Rule struct {
	Category           Category `json:"category"`
	Keywords           []string `json:"keywords"`
	Response           string   `json:"response"`
	DefaultName        string   `json:"default_name,omitempty"`
	DefaultDescription string   `json:"default_description,omitempty"`
}

// Autofills reports whether the rule proposes form defaults.
func (r Rule) Autofills() bool {
	return r.DefaultName != ""
}

// defaultRules is ordered; the first rule with a matching keyword wins.
var defaultRules = []Rule{
	{
		Category: CategoryCustomerSupport,
		Keywords: []string{"customer support", "support bot", "customer service", "help desk", "helpdesk"},
		Response: `Great idea! A customer support agent is one of the most useful agents you can deploy.

Here is what it can do out of the box:
- Answer frequently asked questions around the clock
- Keep the conversation history so follow-up questions make sense
- Escalate to a human when it cannot resolve an issue

To make it effective, describe your product, your tone of voice, and the
questions customers ask most often in the functionality field. I have filled
in a name and description for you; adjust them as you like and generate the code.`,
		DefaultName:        "Customer Support Bot",
		DefaultDescription: "Answers customer questions and resolves common support issues",
	},
	{
		Category: CategoryContentModeration,
		Keywords: []string{"content moderation", "moderate", "moderator", "moderation", "spam"},
		Response: `A content moderation agent helps keep your community safe.

It can:
- Review user-submitted text for spam, abuse and policy violations
- Explain why a piece of content was flagged
- Suggest an action such as approve, edit or remove

List your community guidelines and the categories you want flagged in the
functionality field. The more concrete the rules, the more consistent the
moderation decisions will be.`,
		DefaultName:        "Content Moderator",
		DefaultDescription: "Reviews user content and flags policy violations",
	},
	{
		Category: CategoryDataProcessing,
		Keywords: []string{"data processing", "data processor", "process data", "data pipeline", "transform data"},
		Response: `A data processing agent is a good fit for turning messy input into structured output.

Typical tasks:
- Extract fields from free text, emails or documents
- Clean, normalise and validate records
- Summarise datasets and highlight anomalies

Describe the input format you will send and the exact output shape you expect
in the functionality field. Including an example input and output works best.`,
		DefaultName:        "Data Processor",
		DefaultDescription: "Extracts, cleans and transforms data into structured results",
	},
	{
		Category: CategoryScheduling,
		Keywords: []string{"schedule", "scheduling", "calendar", "appointment", "meeting"},
		Response: `A scheduling assistant can take the back-and-forth out of booking time.

It can:
- Collect availability and preferences in a conversation
- Propose meeting slots and confirm details
- Send reminders and handle rescheduling requests

Explain your working hours, time zone rules and booking constraints in the
functionality field.`,
		DefaultName:        "Scheduling Assistant",
		DefaultDescription: "Books, reschedules and reminds people about appointments",
	},
	{
		Category: CategoryEcommerce,
		Keywords: []string{"e-commerce", "ecommerce", "online store", "shopping", "product recommendation"},
		Response: `An e-commerce assistant can guide shoppers from browsing to checkout.

It can:
- Recommend products based on what the customer is looking for
- Answer questions about shipping, returns and sizing
- Track orders and explain their status

Add your catalogue highlights and store policies to the functionality field so
the agent answers accurately.`,
		DefaultName:        "Shopping Assistant",
		DefaultDescription: "Helps shoppers find products and answers order questions",
	},
	{
		Category: CategoryDeploymentHelp,
		Keywords: []string{"deploy", "wrangler", "cloudflare", "durable object"},
		Response: `Deploying your agent to Cloudflare takes a few steps:

1. Generate the code and save it as src/index.ts.
2. Copy the wrangler.toml block from the end of the file into wrangler.toml.
3. Install dependencies: npm install agents openai
4. Store your key: wrangler secret put OPENAI_API_KEY
5. Run wrangler deploy.

Each agent runs as a Durable Object, so its conversation state survives
between requests without a separate database.`,
	},
	{
		Category: CategoryGettingStarted,
		Keywords: []string{"get started", "getting started", "how do i", "how does this work", "what can you do", "help me"},
		Response: `Welcome! I can help you design and generate an AI agent for Cloudflare.

To get started:
1. Tell me what you want your agent to do, for example "a customer support bot
   for my online store".
2. I will suggest a name and description and explain what the agent can do.
3. Refine the functionality, then generate the code and deploy it.

Popular starting points are customer support, content moderation, data
processing, scheduling and e-commerce agents.`,
	},
}

const genericResponse = `I understand you want to create an agent that: "%s"

Here is how to turn that into a working agent:
1. Pick a short, descriptive name.
2. Summarise its purpose in one or two sentences.
3. Describe the functionality in detail: the inputs it receives, the answers it
   should give and anything it must never do.

I have copied your message into the functionality field. Add more detail there,
or ask me about customer support, moderation, data processing, scheduling or
e-commerce agents for a head start.`

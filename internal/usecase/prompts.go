package usecase

const (
	msgGreeting       = "Hello! I'm your real estate assistant. What's your budget for a property?"
	msgWelcomeBack    = "Welcome back! What's your budget for a property?"
	msgInvalidBudget  = "Please enter a valid budget amount (e.g., 500000)."
	msgSearching      = "Searching for properties matching your budget..."
	msgListingsIntro  = "Here are some properties that match your budget:"
	msgNoListings     = "I couldn't find any properties matching your budget. Would you like to try a different amount?"
	msgSearchFailed   = "Sorry, there was an error searching for properties. Please try again later."
	msgPickListing    = "Use the buttons under a property to express interest or book a visit."
	msgCompleteForm   = "Please complete the form above, or cancel it to pick another property."
	msgWhatNext       = "What would you like to do next?"
	msgUpdatedBudget  = "Great! What's your updated budget? (You can say the same amount again)"
	msgClosing        = "Thanks for using our service! Type 'hi' or your budget amount if you need anything else."
	msgMissingFields  = "Please fill in all fields"
	msgSubmitInterest = "Submitting your interest..."
	msgSubmitBooking  = "Booking your visit..."
)

// formText holds the per-flow wording; both flows share the same states.
type formText struct {
	pending  string
	failed   string
	askAgain string
}

var formTexts = map[FormKind]formText{
	FormInterest: {
		pending:  msgSubmitInterest,
		failed:   "Sorry, there was an error submitting your interest. Please try again later.",
		askAgain: "Would you like to look at more properties or book a visit for another one?",
	},
	FormBooking: {
		pending:  msgSubmitBooking,
		failed:   "Sorry, there was an error booking your visit. Please try again later.",
		askAgain: "Would you like to look at more properties or express interest in another one?",
	},
}

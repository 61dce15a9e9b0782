package extract

// buildExtractionPrompt constructs the fixed instruction block sent to the
// model ahead of the raw statement text. The output schema mirrors the
// candidate shape the pattern extractor produces, so both paths flow through
// identical validation.
func buildExtractionPrompt() string {
	return "You are a parser for mobile money (M-PESA style) statement and confirmation messages.\n\n" +
		"Task:\n" +
		"- Extract ALL transactions present in the text below.\n" +
		"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
		"- Output a JSON array of objects, one per transaction.\n\n" +
		"Each object must have these fields:\n" +
		"- \"transaction_id\": string (the confirmation code, e.g. \"QCK1234567\") or null\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
		"- \"time\": string \"HH:MM\" 24-hour, or null\n" +
		"- \"type\": one of \"received\", \"sent\", \"withdraw\", \"deposit\", \"paybill\", \"buy_goods\", \"airtime\", \"fuliza\"\n" +
		"- \"amount\": number (always positive)\n" +
		"- \"transaction_cost\": number, 0 if not stated\n" +
		"- \"counterparty\": string (the other party's name) or null\n" +
		"- \"counterparty_phone\": string or null\n" +
		"- \"account_number\": string or null\n" +
		"- \"reference\": string or null\n" +
		"- \"balance_after\": number or null\n" +
		"- \"raw_text\": string, the verbatim message fragment this came from\n\n" +
		"Rules:\n" +
		"- Skip fragments that are not transactions; never invent values.\n" +
		"- If a field cannot be determined, set it to null.\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Do NOT use ```json or any Markdown.\n" +
		"Output must begin with \"[\" and end with \"]\".\n\n" +
		"Statement text:\n"
}

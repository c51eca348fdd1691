package chatbot

import "strings"

// cannedReply pairs trigger keywords with a fixed reply. Evaluated in order;
// greetings outrank thanks so "halo, makasih" greets back.
type cannedReply struct {
	keywords []string
	reply    string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"hai", "halo"},
		reply:    "Halo! Ada yang bisa saya bantu terkait dokumen Anda hari ini?",
	},
	{
		keywords: []string{"apa kabar"},
		reply:    "Kabar saya baik, terima kasih! Saya siap membantu Anda mencari informasi dari dokumen.",
	},
	{
		keywords: []string{"terima kasih", "makasih", "thanks"},
		reply:    "Sama-sama! Senang bisa membantu. Jika ada pertanyaan lain, jangan ragu untuk bertanya.",
	},
	{
		keywords: []string{"siapa kamu", "kamu siapa"},
		reply:    "Saya adalah asisten AI cerdas yang dirancang untuk membantu Anda mencari, membandingkan, dan menganalisis informasi dari dokumen perusahaan.",
	},
	{
		keywords: []string{"apa yang bisa kamu lakukan", "bantuan", "help"},
		reply: "Saya bisa membantu Anda dengan:\n" +
			"1. Menjawab pertanyaan berdasarkan dokumen.\n" +
			"2. Membandingkan dua dokumen atau topik.\n" +
			"3. Mengingat percakapan kita dalam sesi ini.\n\n" +
			"Coba tanyakan sesuatu!",
	},
	{
		keywords: []string{"sampai jumpa", "dadah"},
		reply:    "Sampai jumpa! Semoga harimu menyenangkan.",
	},
}

const cannedFallbackReply = "Maaf, saya tidak yakin maksud Anda. Saya dirancang untuk membantu pertanyaan seputar dokumen. Coba ajukan pertanyaan atau katakan 'bantuan' untuk melihat apa yang bisa saya lakukan."

// ConversationalReply answers a conversational query without touching the
// retrieval pipeline.
func ConversationalReply(query string) string {
	queryLower := strings.ToLower(query)
	for _, c := range cannedReplies {
		for _, keyword := range c.keywords {
			if strings.Contains(queryLower, keyword) {
				return c.reply
			}
		}
	}
	return cannedFallbackReply
}

package bot

var messages = map[string]string{
	"welcome": "👋 Xush kelibsiz, %s!\nBu sizning shaxsiy havolangiz:\n\n🔗 %s\n\n" +
		"Ulashish orqali anonim suhbat quring!\nBot haqida bilish uchun 👉 /help",
	"share_button":      "📤 Ulashish",
	"write_message":     "✍️ Murojaatingizni shu yerga yozing!",
	"bad_link":          "⚠️ Noto'g'ri havola. Sizga yangi shaxsiy havola berildi.",
	"sent":              "✅ Xabaringiz yuborildi!",
	"muted":             "⛔ Siz bloklangansiz va xabar yubora olmaysiz.\nBlok muddati: %s",
	"recipient_blocked": "❌ Xabar yuborilmadi. Foydalanuvchi botni bloklagan.",
	"unsupported":       "⚠️ Ushbu turdagi xabar qo'llab-quvvatlanmaydi.",
	"thread_gone":       "⚠️ Bu suhbat topilmadi. Javob yetkazilmadi.",
	"reply_button":      "↩️ Javob berish",
	"generic_error":     "⚠️ Xatolik yuz berdi. Iltimos, qayta urinib ko'ring.",
	"idle_hint":         "ℹ️ Anonim xabar yuborish uchun havola orqali kiring yoki /help ni bosing.",

	"help_user": "❓ Yordam\n\n" +
		"• /start — botni ishga tushirish va shaxsiy havola olish\n" +
		"• /help — yordam oynasi (shu xabar)\n" +
		"• /find_chat — anonim tarzda suhbatdosh qidirish\n" +
		"• /end_chat — jonli chatni yakunlash\n" +
		"• /info — bot haqida batafsil ma'lumot",
	"help_admin": "🛠 Admin yordam\n\nSiz admin hisobidasiz:\n• /admin — admin panel",
	"info": "ℹ️ Bot haqida\n\n" +
		"1️⃣ /start orqali shaxsiy havola olasiz. Havolani ulashsangiz, " +
		"boshqalar sizga anonim xabar yuborishi mumkin.\n" +
		"2️⃣ Kelgan xabarga javob yozsangiz, javob anonim tarzda yuboruvchiga yetadi.\n" +
		"3️⃣ /find_chat — tasodifiy suhbatdosh bilan jonli anonim chat, " +
		"/end_chat — chatni yakunlash.\n\n" +
		"Yordam kerak bo'lsa, admin bilan bog'laning: %s",

	"chat_searching":   "⏳ Suhbatdosh qidirilmoqda... Iltimos, kuting.\n\nBekor qilish uchun 👉 /end_chat",
	"chat_in_queue":    "⏳ Siz allaqachon navbatdasiz. Suhbatdosh qidirilmoqda...\n\nBekor qilish uchun 👉 /end_chat",
	"chat_in_chat":     "⚠️ Siz allaqachon chatdasiz! Chatni tugatish uchun /end_chat buyrug'ini yuboring.",
	"chat_found":       "✅ Suhbatdosh topildi!\n\nChatni yakunlash uchun: /end_chat",
	"chat_ended":       "✅ Chat tugatildi",
	"chat_left_queue":  "✅ Navbatdan chiqdingiz.",
	"chat_not_in_chat": "⚠️ Siz hozircha chatda emassiz.",
	"chat_partner_off": "❌ Suhbatdosh botni bloklagan. Chat tugatildi.",
	"chat_ended_admin": "✅ Chat admin tomonidan tugatildi.",

	"admin_panel":        "👨‍💻 Admin panelga xush kelibsiz!\nQuyidagilardan birini tanlang:",
	"admin_stats":        "📊 Statistika\n\n👥 Umumiy foydalanuvchilar: %d\n📅 Oylik qo'shilganlar: %d\n📆 Kunlik qo'shilganlar: %d\n💬 Faol chatlar: %d\n⛔ Bloklanganlar: %d\n⏳ Navbatda: %d",
	"admin_users_menu":   "👥 Foydalanuvchilar bo'limi:\nKerakli funksiyani tanlang:",
	"admin_ask_search":   "🔍 Qidirish uchun foydalanuvchi ID sini yuboring:",
	"admin_ask_mute_id":  "🆔 Bloklanadigan foydalanuvchi ID sini yuboring:",
	"admin_ask_duration": "⏲ Blok muddatini yuboring (masalan: 30m, 2h, 7d):",
	"admin_ask_reason":   "📝 Blok sababini yozing:",
	"admin_ask_unmute":   "🔓 Blokdan chiqariladigan foydalanuvchi ID sini kiriting:",
	"admin_ask_bcast":    "📢 Yubormoqchi bo'lgan xabaringizni yozing:\nMatn yoki rasm/video bilan matn ham bo'lishi mumkin.",
	"admin_bad_id":       "❌ Noto'g'ri ID format. Iltimos, faqat raqam yuboring.",
	"admin_bad_duration": "❌ Noto'g'ri muddat. Masalan: 30m, 2h, 7d.",
	"admin_muted":        "✅ Foydalanuvchi bloklandi (muddati: %s).",
	"admin_unmuted":      "✅ Foydalanuvchi blokdan chiqarildi.",
	"admin_not_muted":    "❌ Bu foydalanuvchi bazada bloklanmagan edi.",
	"admin_not_found":    "😕 Bunday foydalanuvchi topilmadi.",
	"admin_cancelled":    "❌ Bekor qilindi.",
	"admin_bcast_run":    "⏳ Xabar yuborilmoqda...",
	"admin_bcast_prog":   "📬 Yuborilmoqda: %d / %d foydalanuvchi...",
	"admin_bcast_done":   "✅ Broadcast yakunlandi!\n\n📬 Yuborildi: %d\n❌ Yuborilmadi: %d",
	"admin_no_banned":    "⛔ Bloklangan foydalanuvchilar\n\n😕 Hozircha bloklanganlar yo'q.",
	"admin_no_chats":     "💬 Live chat monitoring\n\n😕 Hozircha faol chatlar yo'q.",
	"admin_chat_ended":   "✅ Chat tugatildi!",
	"admin_chat_missing": "❌ Chat topilmadi.",
	"admin_new_user":     "🆕 Yangi foydalanuvchi qo'shildi!\n\n👤 Ism: %s\n🆔 ID: %d\n📱 Username: %s",

	"admin_recent_header": "🕐 Oxirgi foydalanuvchilar (sahifa %d/%d):",
	"admin_settings":      "⚙️ Sozlamalar\n\n📦 Broadcast partiyasi: %d ta\n⏲ Partiyalar orasi: %s\n📝 Audit kanal: %d\n🔗 Admin: %s",
	"admin_user_card":     "👤 Foydalanuvchi\n\n🆔 ID: %d\n👤 Ism: %s\n📱 Username: %s\n📅 Qo'shilgan: %s\n🕓 Oxirgi faollik: %s\n📌 Holati: %s",
}

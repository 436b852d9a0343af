package gateway

import (
	"fmt"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
)

const (
	tipPrompt      = `একজন ডিজিটাল মার্কেটিং এক্সপার্ট হিসেবে, একটি লেডিস পোশাকের শো-রুমের জন্য "%s" অর্জনে একটি ছোট এবং কার্যকর টিপস দিন। উত্তরটি বাংলা ভাষায় দিন।`
	captionPrompt  = `একটি লেডিস ফ্যাশন ব্র্যান্ডের জন্য "%s" (ক্যাটাগরি: %s) পণ্যটির জন্য একটি আকর্ষণীয় ফেসবুক/ইনস্টাগ্রাম ক্যাপশন এবং ৫টি হ্যাশট্যাগ তৈরি করুন। উত্তরটি বাংলা ভাষায় দিন এবং ইমোজি ব্যবহার করুন।`
	keywordsPrompt = `আমার লেডিস বুটিক শপের বর্ণনা: "%s"। এই শপটির এসইও এর জন্য ১০টি অত্যন্ত কার্যকর কিওয়ার্ড সাজেস্ট করুন যা গুগল সার্চে ভালো ফলাফল দেবে। উত্তরটি বাংলা ভাষায় দিন।`
)

const (
	FallbackTip      = "দুঃখিত, এই মুহূর্তে টিপস জেনারেট করা সম্ভব হচ্ছে না।"
	FallbackCaption  = "ক্যাপশন জেনারেট করা সম্ভব হয়নি।"
	FallbackKeywords = "কিওয়ার্ড সাজেস্ট করা সম্ভব হয়নি।"
)

// Prompt builds the natural-language prompt for req.
func Prompt(req Request) (string, error) {
	switch req.Kind {
	case domain.KindMarketingTip:
		return fmt.Sprintf(tipPrompt, req.Goal), nil
	case domain.KindSocialCaption:
		return fmt.Sprintf(captionPrompt, req.ProductName, req.Category), nil
	case domain.KindKeywords:
		return fmt.Sprintf(keywordsPrompt, req.ShopDescription), nil
	}
	return "", fmt.Errorf("unknown generation kind %q", req.Kind)
}

// Fallback is the fixed text shown when generation for kind fails.
func Fallback(kind domain.GenerationKind) string {
	switch kind {
	case domain.KindSocialCaption:
		return FallbackCaption
	case domain.KindKeywords:
		return FallbackKeywords
	}
	return FallbackTip
}

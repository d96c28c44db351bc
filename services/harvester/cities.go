package harvester

import (
	"sort"
	"strings"
)

// indiaCities maps major Indian cities to their states. Store names
// conventionally start with the city, so a prefix match against this
// table resolves most locations without touching the geocoder. The
// table is immutable after init.
var indiaCities = map[string]string{
	"Mumbai": "Maharashtra", "Delhi": "Delhi", "New Delhi": "Delhi", "Bangalore": "Karnataka", "Bengaluru": "Karnataka",
	"Hyderabad": "Telangana", "Ahmedabad": "Gujarat", "Chennai": "Tamil Nadu", "Kolkata": "West Bengal", "Surat": "Gujarat",
	"Pune": "Maharashtra", "Jaipur": "Rajasthan", "Lucknow": "Uttar Pradesh", "Kanpur": "Uttar Pradesh", "Nagpur": "Maharashtra",
	"Indore": "Madhya Pradesh", "Thane": "Maharashtra", "Bhopal": "Madhya Pradesh", "Visakhapatnam": "Andhra Pradesh",
	"Pimpri-Chinchwad": "Maharashtra", "Patna": "Bihar", "Vadodara": "Gujarat", "Ghaziabad": "Uttar Pradesh", "Ludhiana": "Punjab",
	"Agra": "Uttar Pradesh", "Nashik": "Maharashtra", "Faridabad": "Haryana", "Meerut": "Uttar Pradesh", "Rajkot": "Gujarat",
	"Kalyan-Dombivli": "Maharashtra", "Vasai-Virar": "Maharashtra", "Varanasi": "Uttar Pradesh", "Srinagar": "Jammu and Kashmir",
	"Aurangabad": "Maharashtra", "Dhanbad": "Jharkhand", "Amritsar": "Punjab", "Navi Mumbai": "Maharashtra", "Allahabad": "Uttar Pradesh",
	"Prayagraj": "Uttar Pradesh", "Ranchi": "Jharkhand", "Howrah": "West Bengal", "Coimbatore": "Tamil Nadu", "Jabalpur": "Madhya Pradesh",
	"Gwalior": "Madhya Pradesh", "Vijayawada": "Andhra Pradesh", "Jodhpur": "Rajasthan", "Madurai": "Tamil Nadu", "Raipur": "Chhattisgarh",
	"Kota": "Rajasthan", "Guwahati": "Assam", "Chandigarh": "Chandigarh", "Solapur": "Maharashtra", "Hubli-Dharwad": "Karnataka",
	"Gurgaon": "Haryana", "Gurugram": "Haryana", "Aligarh": "Uttar Pradesh", "Jalandhar": "Punjab", "Noida": "Uttar Pradesh",
	"Dehradun": "Uttarakhand", "Mysore": "Karnataka", "Tiruchirappalli": "Tamil Nadu", "Bhubaneswar": "Odisha", "Salem": "Tamil Nadu",
	"Warangal": "Telangana", "Thiruvananthapuram": "Kerala", "Bhiwandi": "Maharashtra", "Saharanpur": "Uttar Pradesh",
	"Guntur": "Andhra Pradesh", "Amravati": "Maharashtra", "Bikaner": "Rajasthan", "Jammu": "Jammu and Kashmir", "Jamshedpur": "Jharkhand",
	"Bhilai": "Chhattisgarh", "Cuttack": "Odisha", "Kochi": "Kerala", "Udaipur": "Rajasthan", "Firozabad": "Uttar Pradesh",
	"Bhavnagar": "Gujarat", "Durgapur": "West Bengal", "Asansol": "West Bengal", "Nanded": "Maharashtra",
	"Kolhapur": "Maharashtra", "Ajmer": "Rajasthan", "Gulbarga": "Karnataka", "Jamnagar": "Gujarat", "Ujjain": "Madhya Pradesh",
	"Loni": "Uttar Pradesh", "Siliguri": "West Bengal", "Jhansi": "Uttar Pradesh", "Ulhasnagar": "Maharashtra", "Nellore": "Andhra Pradesh",
	"Mangalore": "Karnataka", "Belgaum": "Karnataka", "Malegaon": "Maharashtra", "Gaya": "Bihar", "Jalgaon": "Maharashtra",
	"Davanagere": "Karnataka", "Kozhikode": "Kerala", "Akola": "Maharashtra", "Kurnool": "Andhra Pradesh", "Bokaro": "Jharkhand",
	"Bellary": "Karnataka", "Patiala": "Punjab", "Agartala": "Tripura", "Bhagalpur": "Bihar", "Muzaffarnagar": "Uttar Pradesh",
	"Latur": "Maharashtra", "Dhule": "Maharashtra", "Tirupati": "Andhra Pradesh", "Rohtak": "Haryana", "Korba": "Chhattisgarh",
	"Bhilwara": "Rajasthan", "Berhampur": "Odisha", "Muzaffarpur": "Bihar", "Ahmednagar": "Maharashtra", "Mathura": "Uttar Pradesh",
	"Kollam": "Kerala", "Avadi": "Tamil Nadu", "Kadapa": "Andhra Pradesh", "Sambalpur": "Odisha", "Bilaspur": "Chhattisgarh",
	"Shahjahanpur": "Uttar Pradesh", "Satara": "Maharashtra", "Bijapur": "Karnataka", "Rampur": "Uttar Pradesh", "Shivamogga": "Karnataka",
	"Chandrapur": "Maharashtra", "Junagadh": "Gujarat", "Thrissur": "Kerala", "Alwar": "Rajasthan", "Bardhaman": "West Bengal",
	"Kakinada": "Andhra Pradesh", "Nizamabad": "Telangana", "Parbhani": "Maharashtra", "Tumkur": "Karnataka", "Khammam": "Telangana",
	"Ozhukarai": "Puducherry", "Bihar Sharif": "Bihar", "Panipat": "Haryana", "Darbhanga": "Bihar", "Aizawl": "Mizoram",
	"Dewas": "Madhya Pradesh", "Ichalkaranji": "Maharashtra", "Karnal": "Haryana", "Bathinda": "Punjab", "Jalna": "Maharashtra",
	"Eluru": "Andhra Pradesh", "Barasat": "West Bengal", "Purnia": "Bihar", "Satna": "Madhya Pradesh", "Mau": "Uttar Pradesh",
	"Sonipat": "Haryana", "Farrukhabad": "Uttar Pradesh", "Sagar": "Madhya Pradesh", "Rourkela": "Odisha", "Durg": "Chhattisgarh",
	"Imphal": "Manipur", "Ratlam": "Madhya Pradesh", "Hapur": "Uttar Pradesh", "Arrah": "Bihar", "Karimnagar": "Telangana",
	"Anantapur": "Andhra Pradesh", "Etawah": "Uttar Pradesh", "Ambernath": "Maharashtra", "Bharatpur": "Rajasthan", "Begusarai": "Bihar",
	"Gandhinagar": "Gujarat", "Puducherry": "Puducherry", "Sikar": "Rajasthan", "Rewa": "Madhya Pradesh", "Mirzapur": "Uttar Pradesh",
	"Raichur": "Karnataka", "Pali": "Rajasthan", "Haridwar": "Uttarakhand", "Vijayanagaram": "Andhra Pradesh", "Katihar": "Bihar",
	"Nagarcoil": "Tamil Nadu", "Sri Ganganagar": "Rajasthan", "Thanjavur": "Tamil Nadu", "Bulandshahr": "Uttar Pradesh",
	"Uluberia": "West Bengal", "Murwara": "Madhya Pradesh", "Sambhal": "Uttar Pradesh", "Singrauli": "Madhya Pradesh",
	"Nadiad": "Gujarat", "Secunderabad": "Telangana", "Yamunanagar": "Haryana", "Bidar": "Karnataka", "Munger": "Bihar",
	"Panchkula": "Haryana", "Burhanpur": "Madhya Pradesh", "Kharagpur": "West Bengal", "Dindigul": "Tamil Nadu", "Gandhidham": "Gujarat",
	"Hospet": "Karnataka", "Malda": "West Bengal", "Ongole": "Andhra Pradesh", "Deoghar": "Jharkhand", "Chapra": "Bihar",
	"Haldia": "West Bengal", "Khandwa": "Madhya Pradesh", "Nandyal": "Andhra Pradesh", "Chittoor": "Andhra Pradesh",
	"Morena": "Madhya Pradesh", "Amroha": "Uttar Pradesh", "Anand": "Gujarat", "Bhind": "Madhya Pradesh", "Bhiwani": "Haryana",
	"Bahraich": "Uttar Pradesh", "Fatehpur": "Uttar Pradesh", "Rae Bareli": "Uttar Pradesh", "Orai": "Uttar Pradesh",
	"Vellore": "Tamil Nadu", "Mahesana": "Gujarat", "Raiganj": "West Bengal", "Sirsa": "Haryana", "Danapur": "Bihar",
	"Serampore": "West Bengal", "Sultanpur": "Uttar Pradesh", "Rishra": "West Bengal", "Haflong": "Assam", "Kalimpong": "West Bengal",
}

// city keys sorted longest first so "New Delhi ..." never matches the
// shorter "Delhi" entry. computed once at init, read-only afterwards.
var cityKeysLongestFirst = func() []string {
	keys := make([]string, 0, len(indiaCities))
	for k := range indiaCities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ExtractFromName resolves city and state from a store name by
// longest case-insensitive prefix match against the city table.
func ExtractFromName(storeName string) (city, state string, ok bool) {
	if storeName == "" {
		return "", "", false
	}
	nameLower := strings.ToLower(storeName)
	for _, key := range cityKeysLongestFirst {
		if strings.HasPrefix(nameLower, strings.ToLower(key)) {
			return key, indiaCities[key], true
		}
	}
	return "", "", false
}

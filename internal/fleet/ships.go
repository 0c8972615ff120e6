package fleet

// Размеры корпусов
const (
	SizeCapsule    = "Capsule"
	SizeSmall      = "Small"
	SizeMedium     = "Medium"
	SizeLarge      = "Large"
	SizeCapital    = "Capital"
	SizeIndustrial = "Industrial"
)

// shipsByCategory - справочник корпусов по категориям
var shipsByCategory = map[string][]string{
	"Capsule":  {"Capsule", "Capsule - Genolution 'Auroral' 197-variant"},
	"Shuttle":  {"Amarr Shuttle", "Caldari Shuttle", "Gallente Shuttle", "Minmatar Shuttle", "Leopard"},
	"Corvette": {"Impairor", "Ibis", "Velator", "Reaper"},
	"Frigate": {
		"Executioner", "Punisher", "Tormentor", "Inquisitor", "Crucifier", "Magnate",
		"Merlin", "Kestrel", "Condor", "Bantam", "Griffin", "Heron",
		"Atron", "Incursus", "Tristan", "Imicus", "Maulus", "Navitas",
		"Rifter", "Slasher", "Breacher", "Burst", "Probe", "Vigil",
		"Imperial Navy Slicer", "Crucifier Navy Issue", "Caldari Navy Hookbill", "Griffin Navy Issue",
		"Federation Navy Comet", "Maulus Navy Issue", "Republic Fleet Firetail", "Vigil Fleet Issue",
		"Astero", "Succubus", "Cruor", "Dramiel", "Daredevil", "Worm", "Garmur",
	},
	"Assault Frigate":        {"Retribution", "Vengeance", "Harpy", "Hawk", "Enyo", "Ishkur", "Wolf", "Jaguar"},
	"Interceptor":            {"Crusader", "Malediction", "Crow", "Raptor", "Taranis", "Ares", "Claw", "Stiletto"},
	"Covert Ops":             {"Anathema", "Buzzard", "Helios", "Cheetah"},
	"Stealth Bomber":         {"Purifier", "Manticore", "Nemesis", "Hound"},
	"Electronic Attack Ship": {"Sentinel", "Kitsune", "Keres", "Hyena"},
	"Logistics Frigate":      {"Deacon", "Kirin", "Thalia", "Scalpel"},
	"Expedition Frigate":     {"Prospect", "Endurance"},
	"Destroyer": {
		"Coercer", "Dragoon", "Cormorant", "Corax", "Catalyst", "Algos", "Thrasher", "Talwar",
		"Coercer Navy Issue", "Cormorant Navy Issue", "Catalyst Navy Issue", "Thrasher Fleet Issue",
	},
	"Interdictor":        {"Heretic", "Flycatcher", "Eris", "Sabre"},
	"Tactical Destroyer": {"Confessor", "Jackdaw", "Hecate", "Svipul"},
	"Command Destroyer":  {"Pontifex", "Stork", "Magus", "Bifrost"},
	"Cruiser": {
		"Omen", "Maller", "Arbitrator", "Augoror",
		"Caracal", "Moa", "Blackbird", "Osprey",
		"Thorax", "Vexor", "Exequror", "Celestis",
		"Rupture", "Stabber", "Bellicose", "Scythe",
		"Omen Navy Issue", "Augoror Navy Issue", "Caracal Navy Issue", "Osprey Navy Issue",
		"Vexor Navy Issue", "Exequror Navy Issue", "Stabber Fleet Issue", "Scythe Fleet Issue",
		"Ashimmu", "Phantasm", "Gila", "Stratios", "Vigilant", "Cynabal", "Orthrus",
	},
	"Heavy Assault Cruiser":      {"Zealot", "Sacrilege", "Cerberus", "Eagle", "Ishtar", "Deimos", "Muninn", "Vagabond"},
	"Heavy Interdiction Cruiser": {"Devoter", "Onyx", "Phobos", "Broadsword"},
	"Logistics Cruiser":          {"Guardian", "Basilisk", "Oneiros", "Scimitar"},
	"Recon Ship":                 {"Curse", "Pilgrim", "Falcon", "Rook", "Arazu", "Lachesis", "Huginn", "Rapier"},
	"Strategic Cruiser":          {"Legion", "Tengu", "Proteus", "Loki"},
	"Battlecruiser": {
		"Harbinger", "Prophecy", "Drake", "Ferox", "Brutix", "Myrmidon", "Hurricane", "Cyclone",
		"Harbinger Navy Issue", "Prophecy Navy Issue", "Drake Navy Issue", "Ferox Navy Issue",
		"Brutix Navy Issue", "Myrmidon Navy Issue", "Hurricane Fleet Issue", "Cyclone Fleet Issue",
	},
	"Attack Battlecruiser": {"Oracle", "Naga", "Talos", "Tornado"},
	"Command Ship":         {"Absolution", "Damnation", "Nighthawk", "Vulture", "Astarte", "Eos", "Claymore", "Sleipnir"},
	"Battleship": {
		"Apocalypse", "Armageddon", "Abaddon", "Raven", "Scorpion", "Rokh",
		"Megathron", "Dominix", "Hyperion", "Tempest", "Typhoon", "Maelstrom",
		"Apocalypse Navy Issue", "Armageddon Navy Issue", "Raven Navy Issue", "Scorpion Navy Issue",
		"Megathron Navy Issue", "Dominix Navy Issue", "Tempest Fleet Issue", "Typhoon Fleet Issue",
		"Bhaalgorn", "Nightmare", "Rattlesnake", "Nestor", "Vindicator", "Machariel",
	},
	"Black Ops":       {"Redeemer", "Widow", "Sin", "Panther"},
	"Marauder":        {"Paladin", "Golem", "Kronos", "Vargur"},
	"Carrier":         {"Archon", "Chimera", "Thanatos", "Nidhoggur"},
	"Dreadnought":     {"Revelation", "Phoenix", "Moros", "Naglfar"},
	"Force Auxiliary": {"Apostle", "Minokawa", "Ninazu", "Lif"},
	"Supercarrier":    {"Aeon", "Wyvern", "Nyx", "Hel"},
	"Titan":           {"Avatar", "Leviathan", "Erebus", "Ragnarok"},
	"Industrial": {
		"Bestower", "Sigil", "Badger", "Tayra", "Iteron Mark V", "Epithal",
		"Nereus", "Kryos", "Miasmos", "Hoarder", "Mammoth", "Wreathe",
	},
	"Blockade Runner":         {"Prorator", "Crane", "Viator", "Prowler"},
	"Deep Space Transport":    {"Impel", "Bustard", "Occator", "Mastodon"},
	"Mining Barge":            {"Procurer", "Retriever", "Covetor"},
	"Exhumer":                 {"Skiff", "Mackinaw", "Hulk"},
	"Industrial Command Ship": {"Orca", "Porpoise"},
	"Capital Industrial Ship": {"Rorqual"},
	"Freighter":               {"Providence", "Charon", "Obelisk", "Fenrir"},
	"Jump Freighter":          {"Ark", "Rhea", "Anshar", "Nomad"},
}

// CategorySizes - справочник категория -> размер корпуса
var CategorySizes = map[string]string{
	"Capsule":                    SizeCapsule,
	"Shuttle":                    SizeSmall,
	"Corvette":                   SizeSmall,
	"Frigate":                    SizeSmall,
	"Assault Frigate":            SizeSmall,
	"Interceptor":                SizeSmall,
	"Covert Ops":                 SizeSmall,
	"Stealth Bomber":             SizeSmall,
	"Electronic Attack Ship":     SizeSmall,
	"Logistics Frigate":          SizeSmall,
	"Expedition Frigate":         SizeSmall,
	"Destroyer":                  SizeSmall,
	"Interdictor":                SizeSmall,
	"Tactical Destroyer":         SizeSmall,
	"Command Destroyer":          SizeSmall,
	"Cruiser":                    SizeMedium,
	"Heavy Assault Cruiser":      SizeMedium,
	"Heavy Interdiction Cruiser": SizeMedium,
	"Logistics Cruiser":          SizeMedium,
	"Recon Ship":                 SizeMedium,
	"Strategic Cruiser":          SizeMedium,
	"Battlecruiser":              SizeMedium,
	"Attack Battlecruiser":       SizeMedium,
	"Command Ship":               SizeMedium,
	"Battleship":                 SizeLarge,
	"Black Ops":                  SizeLarge,
	"Marauder":                   SizeLarge,
	"Carrier":                    SizeCapital,
	"Dreadnought":                SizeCapital,
	"Force Auxiliary":            SizeCapital,
	"Supercarrier":               SizeCapital,
	"Titan":                      SizeCapital,
	"Capital Industrial Ship":    SizeCapital,
	"Industrial":                 SizeIndustrial,
	"Blockade Runner":            SizeIndustrial,
	"Deep Space Transport":       SizeIndustrial,
	"Mining Barge":               SizeIndustrial,
	"Exhumer":                    SizeIndustrial,
	"Industrial Command Ship":    SizeIndustrial,
	"Freighter":                  SizeIndustrial,
	"Jump Freighter":             SizeIndustrial,
}

// ShipCategories - справочник название корабля -> категория
var ShipCategories = func() map[string]string {
	res := make(map[string]string)
	for category, ships := range shipsByCategory {
		for _, ship := range ships {
			res[ship] = category
		}
	}
	return res
}()

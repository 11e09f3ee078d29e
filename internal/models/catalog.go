package models

// Catalog is the static medicine price list offered to shops
var Catalog = []Medicine{
	{Name: "ElderVit Plus", Price: 250, ProfitMargin: 0.15},
	{Name: "CardioSafe 50", Price: 450, ProfitMargin: 0.20},
	{Name: "ImmunoBoost XL", Price: 800, ProfitMargin: 0.25},
	{Name: "PainRelief Forte", Price: 120, ProfitMargin: 0.10},
	{Name: "Elder Liquid", Price: 180, ProfitMargin: 0.12},
	{Name: "GastroCure", Price: 180, ProfitMargin: 0.20},
	{Name: "CardioSafe 80", Price: 48, ProfitMargin: 0.12},
	{Name: "Capsules Liquid", Price: 19.20, ProfitMargin: 0.01},
	{Name: "Losartan Liquid", Price: 95, ProfitMargin: 0.23},
	{Name: "Fluconozole Tables IP", Price: 10, ProfitMargin: 0.10},
	{Name: "Vitamin B Complex", Price: 280, ProfitMargin: 0.52},
}

// FindMedicine looks a catalog entry up by exact name
func FindMedicine(name string) (Medicine, bool) {
	for _, m := range Catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Medicine{}, false
}

// DefaultStaff is the roster used when no staff collection has been saved yet
func DefaultStaff() []StaffMember {
	return []StaffMember{
		{
			ID: "S101", EmployeeID: "ELD-SLS-101", Name: "Rajesh Kumar", Role: RoleSalesman,
			Department: "Pharma Sales", Points: 1250, Phone: "9876543210", Salary: 35000, PF: 1800,
			JoiningDate: "2022-03-15", BloodGroup: "B+", Email: "rajesh.k@elderpharma.com",
			AssignedTasks: []Task{},
		},
		{
			ID: "S102", EmployeeID: "ELD-SLS-102", Name: "Amit Singh", Role: RoleSalesman,
			Department: "Pharma Sales", Points: 980, Phone: "9822110033", Salary: 32000, PF: 1600,
			JoiningDate: "2023-01-10", BloodGroup: "A+", Email: "amit.s@elderpharma.com",
			AssignedTasks: []Task{},
		},
	}
}

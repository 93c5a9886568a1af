package bookings

// BookMealInput is the raw booking form.
type BookMealInput struct {
	MealName string
	MealDate string
}

type bookMealForm struct {
	MealName string `form:"meal_name" validate:"required,utf8,max=100"`
	MealDate string `form:"meal_date" validate:"required,datetime=2006-01-02"`
}
